// Package vision is the client for external vision-language models. It owns
// the prompt, the request bounds and the parsing of free-form answers; the
// provider-specific transports live in the subpackages.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// Default request bounds.
const (
	DefaultTimeout         = 45 * time.Second
	DefaultTemperature     = 0.1
	DefaultMaxOutputTokens = 1000
)

// Options bound each model call.
type Options struct {
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
}

// Client implements models.Classifier on top of a VisionBackend.
type Client struct {
	backend models.VisionBackend
	opts    Options
}

// NewClient wraps backend. Zero-valued options take the defaults.
func NewClient(backend models.VisionBackend, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Client{backend: backend, opts: opts}
}

func (c *Client) Name() string { return c.backend.Name() }

// Model is the backend's model identifier.
func (c *Client) Model() string { return c.backend.Model() }

// Label is the analysisSource shown for results this client produced.
func (c *Client) Label() string { return c.backend.Label() }

// Classify sends the image to the model and parses the answer. Transport
// failures and timeouts return an error wrapping models.ErrModelUnavailable;
// an empty answer returns models.ErrMalformedResponse. An answer without a
// usable JSON object is recovered through KeywordFallback.
func (c *Client) Classify(ctx context.Context, req models.AnalysisRequest) (models.RawClassification, error) {
	if len(req.Image) == 0 {
		return models.RawClassification{}, models.ErrNoInputProvided
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	text, err := c.backend.Generate(callCtx, models.VisionRequest{
		Prompt:          prompt,
		Image:           req.Image,
		MIMEType:        MIMEType(req),
		Temperature:     c.opts.Temperature,
		MaxOutputTokens: c.opts.MaxOutputTokens,
	})
	if err != nil {
		return models.RawClassification{}, c.classifyError(callCtx, err)
	}

	slog.Info("vision model answered",
		"provider", c.backend.Name(),
		"model", c.backend.Model(),
		"duration_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(text),
	)

	if strings.TrimSpace(text) == "" {
		return models.RawClassification{}, fmt.Errorf("%s: empty answer: %w", c.backend.Name(), models.ErrMalformedResponse)
	}

	raw, ok := ParseResponse(text)
	if !ok {
		slog.Warn("vision answer had no valid classification object, scanning keywords",
			"provider", c.backend.Name(),
		)
		raw = KeywordFallback(text)
	}
	return raw, nil
}

// classifyError maps any backend error onto the model error taxonomy.
func (c *Client) classifyError(ctx context.Context, err error) error {
	if errors.Is(err, models.ErrModelUnavailable) || errors.Is(err, models.ErrMalformedResponse) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out after %s: %w: %w", c.backend.Name(), c.opts.Timeout, models.ErrModelUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", c.backend.Name(), models.ErrModelUnavailable, err)
}

// MIMEType picks the image MIME type sent to the model: the upload's declared
// type when it is an image type, otherwise sniffed from the bytes, otherwise
// image/jpeg.
func MIMEType(req models.AnalysisRequest) string {
	if strings.HasPrefix(req.MIMEType, "image/") {
		return req.MIMEType
	}
	if sniffed := http.DetectContentType(req.Image); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}

var _ models.Classifier = (*Client)(nil)
