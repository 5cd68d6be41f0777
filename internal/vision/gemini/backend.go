// Package gemini is the Google Gemini vision backend.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"google.golang.org/genai"
)

// Backend implements models.VisionBackend using the Gemini API.
type Backend struct {
	client *genai.Client
	model  string
}

// New creates a Gemini backend. cfg.BaseURL overrides the API endpoint.
func New(ctx context.Context, cfg config.GeminiConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Backend{client: client, model: cfg.Model}, nil
}

func (b *Backend) Name() string  { return "gemini" }
func (b *Backend) Model() string { return b.model }
func (b *Backend) Label() string { return "Google Gemini AI" }

func (b *Backend) Generate(ctx context.Context, req models.VisionRequest) (string, error) {
	temp := float32(req.Temperature)
	gc := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		{InlineData: &genai.Blob{Data: req.Image, MIMEType: req.MIMEType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model, contents, gc)
	if err != nil {
		return "", mapError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response: %w", models.ErrMalformedResponse)
	}
	return result.Text(), nil
}

func mapError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: status %d: %w: %w", apiErr.Code, models.ErrModelUnavailable, err)
	}
	return fmt.Errorf("gemini: %w: %w", models.ErrModelUnavailable, err)
}

var _ models.VisionBackend = (*Backend)(nil)
