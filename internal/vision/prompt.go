package vision

import (
	"strings"

	"github.com/lithammer/dedent"
)

// Prompt returns the fixed instruction sent with every image.
func Prompt() string { return prompt }

var prompt = strings.TrimSpace(dedent.Dedent(`
	You are inspecting a photograph of used medical equipment for a resale marketplace.

	Identify the equipment and grade its visible condition. Respond with a single JSON object containing exactly these fields:
	- equipment: one of "wheelchair", "microscope", "stethoscope", "defibrillator", "monitor", "ultrasound", "bed", or "medical equipment" if none fit
	- condition: one of "excellent", "good", "fair", "poor"
	- description: one or two sentences describing what is visible and how it affects the grade
	- visibleIssues: an array of short strings naming visible defects (empty array if none)
	- confidence: "high", "medium" or "low"

	Example response:
	{"equipment": "wheelchair", "condition": "good", "description": "Folding manual wheelchair with intact upholstery and light scuffing on the frame.", "visibleIssues": ["Scuffed armrest"], "confidence": "high"}

	Respond ONLY with the JSON object, no markdown or other text.
`))
