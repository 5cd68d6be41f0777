package vision

import (
	"strings"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

const (
	keywordDescriptionPrefix = "AI analysis completed. "
	keywordExcerptRunes      = 150
	keywordIssue             = "Analysis completed from AI response"
	keywordConfidence        = "medium"
)

type keywordSet struct {
	value    string
	keywords []string
}

// Scanned in order; the first set with any hit wins.
var equipmentKeywords = []keywordSet{
	{"microscope", []string{"microscope", "lens", "optic", "magnification", "objective"}},
	{"stethoscope", []string{"stethoscope", "chest", "heart", "sound", "acoustic", "tube"}},
	{"defibrillator", []string{"defibrillator", "aed", "heart", "shock", "paddle", "emergency"}},
	{"ultrasound", []string{"ultrasound", "sonogram", "probe", "transducer", "imaging", "scan"}},
	{"monitor", []string{"monitor", "screen", "display", "vital", "patient monitor", "ecg", "ekg"}},
	{"wheelchair", []string{"wheelchair", "wheel", "chair", "mobility"}},
	{"bed", []string{"bed", "hospital bed", "medical bed"}},
}

var conditionKeywords = []keywordSet{
	{string(models.ConditionExcellent), []string{"excellent", "like new", "perfect"}},
	{string(models.ConditionFair), []string{"fair", "average", "moderate"}},
	{string(models.ConditionPoor), []string{"poor", "bad", "broken"}},
}

// KeywordFallback recovers a classification from an unstructured model answer
// by case-insensitive substring search.
func KeywordFallback(text string) models.RawClassification {
	lower := strings.ToLower(text)

	equipment := firstMatch(lower, equipmentKeywords, models.GenericEquipment)
	condition := firstMatch(lower, conditionKeywords, string(models.ConditionGood))

	return models.RawClassification{
		Equipment:     equipment,
		Condition:     models.Condition(condition),
		Description:   keywordDescriptionPrefix + excerpt(text, keywordExcerptRunes) + "...",
		VisibleIssues: []string{keywordIssue},
		Confidence:    keywordConfidence,
		Unstructured:  true,
	}
}

func firstMatch(lower string, sets []keywordSet, fallback string) string {
	for _, set := range sets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.value
			}
		}
	}
	return fallback
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
