// Package anthropic is the Anthropic Claude vision backend.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

// Backend implements models.VisionBackend using the Messages API.
type Backend struct {
	client *anthropic.Client
	model  string
}

// New creates an Anthropic backend. The SDK's own retries are disabled; the
// analysis service falls back instead of retrying.
func New(cfg config.AnthropicConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &Backend{client: &client, model: cfg.Model}, nil
}

func (b *Backend) Name() string  { return "anthropic" }
func (b *Backend) Model() string { return b.model }
func (b *Backend) Label() string { return "Anthropic Claude" }

func (b *Backend) Generate(ctx context.Context, req models.VisionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(req.MaxOutputTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(req.MIMEType, base64.StdEncoding.EncodeToString(req.Image)),
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content in response: %w", models.ErrMalformedResponse)
	}
	return sb.String(), nil
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic: status %d: %w: %w", apiErr.StatusCode, models.ErrModelUnavailable, err)
	}
	return fmt.Errorf("anthropic: %w: %w", models.ErrModelUnavailable, err)
}

var _ models.VisionBackend = (*Backend)(nil)
