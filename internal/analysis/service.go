// Package analysis orchestrates a single equipment analysis: vision model
// first, heuristic on model failure, then assembly against the knowledge base.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// ModelClassifier is a models.Classifier backed by a vision model, with the
// label shown to callers as analysisSource.
type ModelClassifier interface {
	models.Classifier
	Label() string
}

// Service runs the analysis pipeline. It is safe for concurrent use.
type Service struct {
	model     ModelClassifier
	heuristic models.Classifier
	assembler *Assembler
}

// NewService creates a Service. model may be nil, in which case every request
// goes straight to the heuristic classifier without any network call.
func NewService(model ModelClassifier, heuristic models.Classifier, assembler *Assembler) *Service {
	return &Service{model: model, heuristic: heuristic, assembler: assembler}
}

// ModelConfigured reports whether a vision model is wired in.
func (s *Service) ModelConfigured() bool {
	return s.model != nil
}

// ProviderName is the configured model's name, or the heuristic's when none is.
func (s *Service) ProviderName() string {
	if s.model != nil {
		return s.model.Name()
	}
	return s.heuristic.Name()
}

// Analyze classifies req and assembles the result. Model failures
// (models.ErrModelUnavailable, models.ErrMalformedResponse) are absorbed by
// falling back to the heuristic. A cancelled ctx aborts with ctx's error.
func (s *Service) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if len(req.Image) == 0 {
		return models.AnalysisResult{}, models.ErrNoInputProvided
	}
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	start := time.Now()
	raw, prov, source, err := s.classify(ctx, req)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	result, err := s.assembler.Assemble(raw, prov, source)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("assembling result: %w", err)
	}

	slog.Info("analysis completed",
		"provenance", prov,
		"equipment", result.DetectedType,
		"condition", result.Condition,
		"bytes", len(req.Image),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (s *Service) classify(ctx context.Context, req models.AnalysisRequest) (models.RawClassification, models.Provenance, string, error) {
	if s.model != nil {
		raw, err := s.model.Classify(ctx, req)
		switch {
		case err == nil:
			return raw, models.ProvenanceModel, s.model.Label(), nil
		case ctx.Err() != nil:
			return models.RawClassification{}, "", "", ctx.Err()
		case errors.Is(err, models.ErrModelUnavailable), errors.Is(err, models.ErrMalformedResponse):
			slog.Warn("vision model failed, falling back to heuristic",
				"provider", s.model.Name(),
				"error", err,
			)
		default:
			return models.RawClassification{}, "", "", fmt.Errorf("classifying with %s: %w", s.model.Name(), err)
		}
	}

	raw, err := s.heuristic.Classify(ctx, req)
	if err != nil {
		return models.RawClassification{}, "", "", fmt.Errorf("heuristic classification: %w", err)
	}
	return raw, models.ProvenanceHeuristic, models.HeuristicSourceLabel, nil
}
