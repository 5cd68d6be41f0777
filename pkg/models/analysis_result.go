package models

// Provenance records which classifier produced a result.
type Provenance string

const (
	ProvenanceModel     Provenance = "model"
	ProvenanceHeuristic Provenance = "heuristic"
)

// HeuristicSourceLabel is the analysisSource shown for fallback results.
const HeuristicSourceLabel = "Enhanced Demo Analysis"

// AnalysisResult is the condition assessment returned to callers.
type AnalysisResult struct {
	Equipment         string   `json:"equipment"`
	DetectedType      string   `json:"detectedType"`
	Condition         string   `json:"condition"`
	Description       string   `json:"description"`
	Confidence        string   `json:"confidence"`
	AnalysisSource    string   `json:"analysisSource"`
	EstimatedValue    string   `json:"estimatedValue"`
	Recommendations   []string `json:"recommendations"`
	KeyConsiderations []string `json:"keyConsiderations"`
	NextSteps         []string `json:"nextSteps"`
	VisibleIssues     []string `json:"visibleIssues"`
	Note              string   `json:"note"`
	Timestamp         string   `json:"timestamp"`

	Provenance Provenance `json:"-"`
}
