// Package models contains shared data models used across the medequip codebase.
package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Condition is the closed grade vocabulary for equipment state.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Conditions lists every grade, best first.
var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

// Valid reports whether c is one of the four grades. No normalization is applied.
func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// GenericEquipment is the category used when nothing more specific is known.
const GenericEquipment = "medical equipment"

// AnalysisRequest is the input to a classification. Image holds the raw upload
// and must not be retained once the request completes.
type AnalysisRequest struct {
	Image    []byte
	Filename string
	Size     int64
	MIMEType string
}

// RawClassification is what a Classifier produces before knowledge-base enrichment.
type RawClassification struct {
	Equipment     string     `json:"equipment"`
	Condition     Condition  `json:"condition"`
	Description   string     `json:"description,omitempty"`
	VisibleIssues []string   `json:"visibleIssues,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`

	// Unstructured is set when the model answered but no valid JSON object
	// could be read, so fields were recovered by keyword scanning.
	Unstructured bool `json:"-"`
}

// Classifier turns an upload into a RawClassification.
// Implementations: the vision client, the heuristic classifier, and the cache decorator.
type Classifier interface {
	Classify(ctx context.Context, req AnalysisRequest) (RawClassification, error)
	// Name identifies the implementation in logs (e.g. "gemini", "heuristic").
	Name() string
}

// Confidence holds either a numeric score or a label ("high", "medium", "low")
// as reported by the producer. The zero value means absent.
type Confidence string

// UnmarshalJSON accepts both JSON numbers and strings.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Confidence(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("confidence must be a number or string: %w", err)
	}
	*c = Confidence(n.String())
	return nil
}

// ConfidenceFromInt builds a numeric Confidence.
func ConfidenceFromInt(n int) Confidence {
	return Confidence(strconv.Itoa(n))
}
