package vision

import (
	"encoding/json"
	"strings"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// ExtractJSONObject returns the first balanced {...} span in text. Braces
// inside JSON string literals are ignored. ok is false when no '{' exists or
// the first one is never closed.
func ExtractJSONObject(text string) (span string, ok bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseResponse reads a structured classification out of a model answer.
// ok is false when no object is present, it is not valid JSON, or it fails
// schema validation; callers then fall back to KeywordFallback.
func ParseResponse(text string) (raw models.RawClassification, ok bool) {
	span, found := ExtractJSONObject(text)
	if !found {
		return models.RawClassification{}, false
	}

	var doc any
	if err := json.Unmarshal([]byte(span), &doc); err != nil {
		return models.RawClassification{}, false
	}
	if err := validateClassification(doc); err != nil {
		return models.RawClassification{}, false
	}

	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return models.RawClassification{}, false
	}
	raw.Equipment = strings.TrimSpace(raw.Equipment)
	raw.Description = strings.TrimSpace(raw.Description)
	return raw, true
}
