package models_test

import (
	"encoding/json"
	"testing"

	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.Confidence
	}{
		{"integer", `{"confidence": 85}`, "85"},
		{"fraction", `{"confidence": 0.85}`, "0.85"},
		{"label", `{"confidence": " high "}`, "high"},
		{"percent string", `{"confidence": "85%"}`, "85%"},
		{"null", `{"confidence": null}`, ""},
		{"absent", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw models.RawClassification
			require.NoError(t, json.Unmarshal([]byte(tt.input), &raw))
			assert.Equal(t, tt.want, raw.Confidence)
		})
	}
}

func TestConfidence_RejectsObjects(t *testing.T) {
	var raw models.RawClassification
	err := json.Unmarshal([]byte(`{"confidence": {"value": 1}}`), &raw)
	assert.Error(t, err)
}

func TestCondition_Valid(t *testing.T) {
	for _, c := range models.Conditions {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, models.Condition("Good").Valid())
	assert.False(t, models.Condition("broken").Valid())
	assert.False(t, models.Condition("").Valid())
}

func TestRawClassification_UnstructuredNotSerialized(t *testing.T) {
	data, err := json.Marshal(models.RawClassification{
		Equipment:    "wheelchair",
		Condition:    models.ConditionGood,
		Unstructured: true,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Unstructured")
	assert.NotContains(t, string(data), "description")
}
