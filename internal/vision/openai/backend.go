// Package openai is the vision backend for the OpenAI chat completions API and
// OpenAI-compatible servers such as vLLM.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

// Backend implements models.VisionBackend over chat completions with an
// inline data-URL image part.
type Backend struct {
	client *openai.Client
	model  string
	name   string
	label  string
}

// New creates a backend for api.openai.com (or cfg.BaseURL).
func New(cfg config.OpenAIConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &Backend{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		name:   "openai",
		label:  "OpenAI",
	}, nil
}

// NewVLLM creates a backend for a self-hosted vLLM server's OpenAI-compatible
// endpoint at cfg.BaseURL + "/v1".
func NewVLLM(cfg config.VLLMConfig) (*Backend, error) {
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("vllm base URL and model are required")
	}

	oc := openai.DefaultConfig("EMPTY")
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"

	return &Backend{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		name:   "vllm",
		label:  "vLLM (" + cfg.Model + ")",
	}, nil
}

func (b *Backend) Name() string  { return b.name }
func (b *Backend) Model() string { return b.model }
func (b *Backend) Label() string { return b.label }

func (b *Backend) Generate(ctx context.Context, req models.VisionRequest) (string, error) {
	dataURL := "data:" + req.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image)

	chatReq := openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: float32(req.Temperature),
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
				},
			},
		}},
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", b.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response: %w", b.name, models.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *Backend) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: status %d: %w: %w", b.name, apiErr.HTTPStatusCode, models.ErrModelUnavailable, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s: status %d: %w: %w", b.name, reqErr.HTTPStatusCode, models.ErrModelUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", b.name, models.ErrModelUnavailable, err)
}

var _ models.VisionBackend = (*Backend)(nil)
