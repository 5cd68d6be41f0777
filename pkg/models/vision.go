package models

import "context"

// VisionBackend is the transport to an external vision-language model.
// Never call a specific backend directly; always go through the vision client.
type VisionBackend interface {
	// Generate sends the prompt and image and returns the model's raw text answer.
	// Errors must wrap ErrModelUnavailable or ErrMalformedResponse.
	Generate(ctx context.Context, req VisionRequest) (string, error)
	// Name returns the backend identifier (e.g., "gemini", "ollama").
	Name() string
	// Model is the provider-side model identifier.
	Model() string
	// Label is the human-readable source shown to callers (e.g., "Google Gemini AI").
	Label() string
}

// VisionRequest is a single prompt+image generation call.
type VisionRequest struct {
	Prompt          string
	Image           []byte
	MIMEType        string
	Temperature     float64
	MaxOutputTokens int
}
