package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/medequip/internal/knowledge"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

// Fixed guidance attached to every result.
var (
	recommendations = []string{
		"Verify equipment service history and maintenance records",
		"Check for manufacturer recalls or safety notices",
		"Test all functions before purchase",
		"Inspect for physical damage or wear",
		"Consider professional inspection for expensive equipment",
	}
	keyConsiderations = []string{
		"Check overall physical condition",
		"Test all primary functions",
		"Verify safety certifications",
		"Inspect for wear and tear",
	}
	nextSteps = []string{
		"Compare prices with similar equipment online",
		"Contact seller for detailed service history",
		"Arrange for professional testing if possible",
		"Check warranty and return policy",
	}
)

const (
	noIssuesDetected = "No specific issues detected"

	noteModel             = "AI-powered analysis completed"
	noteModelUnstructured = "AI-powered analysis completed; the model answered without structured output, so fields were recovered from its text"
	noteHeuristic         = "Enhanced demo analysis"

	// Confidence synthesized when the classifier reported none: [75, 95).
	synthesizedConfidenceMin  = 75
	synthesizedConfidenceSpan = 20

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Confidence percentages for model-reported labels.
var confidenceLabels = map[string]int{
	"high":   90,
	"medium": 70,
	"low":    45,
}

type intRand interface {
	IntN(n int) int
}

type globalIntRand struct{}

func (globalIntRand) IntN(n int) int { return rand.IntN(n) }

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithRand sets the source used to synthesize missing confidences.
func WithRand(r interface{ IntN(int) int }) AssemblerOption {
	return func(a *Assembler) { a.rng = r }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

// Assembler merges a RawClassification with the knowledge base into the
// response contract. It holds no mutable state and never calls a model.
type Assembler struct {
	kb  *knowledge.Base
	rng intRand
	now func() time.Time
}

func NewAssembler(kb *knowledge.Base, opts ...AssemblerOption) *Assembler {
	a := &Assembler{kb: kb, rng: globalIntRand{}, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the AnalysisResult. source is the analysisSource label for
// model results and is ignored for heuristic ones.
func (a *Assembler) Assemble(raw models.RawClassification, prov models.Provenance, source string) (models.AnalysisResult, error) {
	equipment := strings.TrimSpace(raw.Equipment)
	if equipment == "" {
		return models.AnalysisResult{}, fmt.Errorf("equipment is empty: %w", models.ErrInternalAssembly)
	}
	if !raw.Condition.Valid() {
		return models.AnalysisResult{}, fmt.Errorf("condition %q: %w", raw.Condition, models.ErrInternalAssembly)
	}

	profile, _ := a.kb.Lookup(equipment)

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = profile.Conditions[raw.Condition]
	}

	issues := make([]string, 0, len(raw.VisibleIssues))
	for _, issue := range raw.VisibleIssues {
		if s := strings.TrimSpace(issue); s != "" {
			issues = append(issues, s)
		}
	}
	if len(issues) == 0 {
		issues = []string{noIssuesDetected}
	}

	result := models.AnalysisResult{
		Equipment:         profile.Name,
		DetectedType:      equipment,
		Condition:         string(raw.Condition),
		Description:       description,
		Confidence:        a.formatConfidence(raw.Confidence),
		EstimatedValue:    profile.PriceRanges[raw.Condition],
		Recommendations:   clone(recommendations),
		KeyConsiderations: clone(keyConsiderations),
		NextSteps:         clone(nextSteps),
		VisibleIssues:     issues,
		Timestamp:         a.now().UTC().Format(timestampLayout),
		Provenance:        prov,
	}

	switch prov {
	case models.ProvenanceModel:
		result.AnalysisSource = source
		result.Note = noteModel
		if raw.Unstructured {
			result.Note = noteModelUnstructured
		}
	default:
		result.Provenance = models.ProvenanceHeuristic
		result.AnalysisSource = models.HeuristicSourceLabel
		result.Note = noteHeuristic
	}

	return result, nil
}

// formatConfidence renders c as "N%". Labels map through confidenceLabels,
// fractions in (0,1] scale by 100, other numbers are clamped to [0,100].
// Anything else is replaced by a synthesized value.
func (a *Assembler) formatConfidence(c models.Confidence) string {
	s := strings.ToLower(strings.TrimSpace(string(c)))
	if n, ok := confidenceLabels[s]; ok {
		return percent(n)
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		if f > 0 && f <= 1 && strings.Contains(s, ".") {
			f *= 100
		}
		return percent(int(math.Round(math.Max(0, math.Min(100, f)))))
	}

	return percent(synthesizedConfidenceMin + a.rng.IntN(synthesizedConfidenceSpan))
}

func percent(n int) string {
	return strconv.Itoa(n) + "%"
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
