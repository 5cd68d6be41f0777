package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/medequip/internal/cache"
	"github.com/kiranshivaraju/medequip/pkg/models"
)

// ModelClassifier is a Classifier backed by a named model.
type ModelClassifier interface {
	models.Classifier
	Model() string
	Label() string
}

// CachedClassifier serves repeat uploads of identical bytes from the cache
// instead of calling the model again. Cache errors never fail a request.
type CachedClassifier struct {
	next  ModelClassifier
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps next with a cache of the given TTL.
func NewCachedClassifier(next ModelClassifier, c cache.Cache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{next: next, cache: c, ttl: ttl}
}

func (c *CachedClassifier) Name() string  { return c.next.Name() }
func (c *CachedClassifier) Model() string { return c.next.Model() }
func (c *CachedClassifier) Label() string { return c.next.Label() }

func (c *CachedClassifier) Classify(ctx context.Context, req models.AnalysisRequest) (models.RawClassification, error) {
	if len(req.Image) == 0 {
		return models.RawClassification{}, models.ErrNoInputProvided
	}

	sum := sha256.Sum256(req.Image)
	key := cache.ClassificationKey(c.next.Name(), c.next.Model(), hex.EncodeToString(sum[:]))

	if data, found, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("classification cache read failed", "error", err)
	} else if found {
		var raw models.RawClassification
		if err := json.Unmarshal(data, &raw); err == nil && raw.Condition.Valid() && raw.Equipment != "" {
			slog.Info("classification cache hit", "provider", c.next.Name())
			return raw, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	raw, err := c.next.Classify(ctx, req)
	if err != nil {
		return raw, err
	}

	// Keyword-recovered answers are not cached so a later upload gets another
	// chance at a structured answer.
	if !raw.Unstructured {
		if data, err := json.Marshal(raw); err == nil {
			if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
				slog.Warn("classification cache write failed", "error", err)
			}
		}
	}
	return raw, nil
}

var _ ModelClassifier = (*CachedClassifier)(nil)
var _ ModelClassifier = (*Client)(nil)
