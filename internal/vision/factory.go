package vision

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/internal/vision/anthropic"
	"github.com/kiranshivaraju/medequip/internal/vision/gemini"
	"github.com/kiranshivaraju/medequip/internal/vision/ollama"
	"github.com/kiranshivaraju/medequip/internal/vision/openai"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

// NewBackend constructs the backend named by cfg.Provider.
// Called once at startup.
func NewBackend(ctx context.Context, cfg config.VisionConfig) (models.VisionBackend, error) {
	var (
		backend models.VisionBackend
		err     error
	)
	switch cfg.Provider {
	case "gemini":
		backend, err = gemini.New(ctx, cfg.Gemini)
	case "openai":
		backend, err = openai.New(cfg.OpenAI)
	case "vllm":
		backend, err = openai.NewVLLM(cfg.VLLM)
	case "anthropic":
		backend, err = anthropic.New(cfg.Anthropic)
	case "ollama":
		backend, err = ollama.New(cfg.Ollama)
	default:
		return nil, fmt.Errorf("unknown vision provider %q: must be one of gemini, openai, vllm, anthropic, ollama", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", cfg.Provider, err)
	}
	return backend, nil
}

// NewFromConfig returns a Client for the configured provider, or nil when the
// provider is "none" or its credential is missing or a placeholder. A nil
// Client means every request is classified by the heuristic.
func NewFromConfig(ctx context.Context, cfg config.VisionConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(backend, Options{
		Timeout:         cfg.Timeout,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}), nil
}
