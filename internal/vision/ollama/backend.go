// Package ollama is the vision backend for a local Ollama server running a
// multimodal model such as llava.
package ollama

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Backend implements models.VisionBackend against POST /api/generate.
type Backend struct {
	http  *resty.Client
	model string
}

func New(cfg config.OllamaConfig) (*Backend, error) {
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ollama base URL and model are required")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")

	return &Backend{http: client, model: cfg.Model}, nil
}

func (b *Backend) Name() string  { return "ollama" }
func (b *Backend) Model() string { return b.model }
func (b *Backend) Label() string { return "Ollama (" + b.model + ")" }

func (b *Backend) Generate(ctx context.Context, req models.VisionRequest) (string, error) {
	result := &generateResponse{}

	res, err := b.http.NewRequest().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  b.model,
			Prompt: req.Prompt,
			Images: []string{base64.StdEncoding.EncodeToString(req.Image)},
			Stream: false,
			Options: generateOptions{
				Temperature: req.Temperature,
				NumPredict:  req.MaxOutputTokens,
			},
		}).
		SetResult(result).
		ForceContentType("application/json").
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %w", models.ErrModelUnavailable, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("ollama: status %d: %w", res.StatusCode(), models.ErrModelUnavailable)
	}
	if result.Response == nil {
		return "", fmt.Errorf("ollama: response field missing: %w", models.ErrMalformedResponse)
	}
	return *result.Response, nil
}

var _ models.VisionBackend = (*Backend)(nil)
