package vision_test

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/medequip/internal/vision"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestKeywordFallback_Condition(t *testing.T) {
	tests := []struct {
		text string
		want models.Condition
	}{
		{"The unit is in poor shape.", models.ConditionPoor},
		{"Looks BROKEN to me", models.ConditionPoor},
		{"Like new, barely used", models.ConditionExcellent},
		{"average wear on the frame", models.ConditionFair},
		// excellent is checked before poor
		{"perfect optics but a bad stage", models.ConditionExcellent},
		// fair is checked before poor
		{"moderate wear, poor paint", models.ConditionFair},
		{"nothing notable", models.ConditionGood},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, vision.KeywordFallback(tt.text).Condition)
		})
	}
}

func TestKeywordFallback_Equipment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Binocular microscope with 4 objectives", "microscope"},
		{"Stethoscope chest piece", "stethoscope"},
		// heart appears in both sets; stethoscope is scanned first
		{"device for the heart", "stethoscope"},
		{"AED trainer", "defibrillator"},
		{"Linear transducer probe", "ultrasound"},
		{"ECG display unit", "monitor"},
		{"Folding wheelchair", "wheelchair"},
		{"hospital bed frame", "bed"},
		{"a grey box", models.GenericEquipment},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, vision.KeywordFallback(tt.text).Equipment)
		})
	}
}

func TestKeywordFallback_Fields(t *testing.T) {
	raw := vision.KeywordFallback("The wheelchair is in poor condition")

	assert.True(t, raw.Unstructured)
	assert.Equal(t, "AI analysis completed. The wheelchair is in poor condition...", raw.Description)
	assert.Equal(t, []string{"Analysis completed from AI response"}, raw.VisibleIssues)
	assert.Equal(t, models.Confidence("medium"), raw.Confidence)
}

func TestKeywordFallback_DescriptionTruncatedTo150Runes(t *testing.T) {
	text := strings.Repeat("é", 400)
	raw := vision.KeywordFallback(text)

	body := strings.TrimSuffix(strings.TrimPrefix(raw.Description, "AI analysis completed. "), "...")
	assert.Equal(t, 150, len([]rune(body)))
}
