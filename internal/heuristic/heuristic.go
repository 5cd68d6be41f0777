// Package heuristic implements the fallback classifier used when no vision model
// answer is available. It looks only at the upload's filename and size.
package heuristic

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// Scoring constants. score = SizeWeight*sizeFactor + RandomWeight*rand.
const (
	SizeWeight   = 0.4
	RandomWeight = 0.6

	// SizeSaturation is the byte length at which sizeFactor reaches 1.
	SizeSaturation = 2 * 1024 * 1024

	ExcellentThreshold = 0.70
	GoodThreshold      = 0.45
	FairThreshold      = 0.20
)

// Rand is the randomness source. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// filenameRule maps any of its substrings to an equipment category.
type filenameRule struct {
	needles  []string
	category string
}

// Evaluated in order; first hit wins.
var filenameRules = []filenameRule{
	{[]string{"wheel", "chair"}, "wheelchair"},
	{[]string{"micro", "scope"}, "microscope"},
	{[]string{"steth"}, "stethoscope"},
	{[]string{"defib", "aed"}, "defibrillator"},
	{[]string{"monitor", "vital"}, "monitor"},
}

// Drawn from when the filename gives no hint.
var archetypes = []string{"wheelchair", "microscope", "stethoscope", "defibrillator", "monitor"}

// Classifier is the heuristic models.Classifier. It never returns an error.
type Classifier struct {
	rng Rand
}

// New returns a Classifier backed by the process-wide random source.
func New() *Classifier {
	return &Classifier{rng: globalRand{}}
}

// NewWithRand returns a Classifier using rng, for reproducible tests.
func NewWithRand(rng Rand) *Classifier {
	return &Classifier{rng: rng}
}

// Archetypes lists the categories drawn from when the filename gives no hint.
func Archetypes() []string {
	return slices.Clone(archetypes)
}

func (c *Classifier) Name() string { return "heuristic" }

func (c *Classifier) Classify(_ context.Context, req models.AnalysisRequest) (models.RawClassification, error) {
	size := req.Size
	if size <= 0 {
		size = int64(len(req.Image))
	}

	equipment := c.guessEquipment(req.Filename)
	score := Score(size, c.rng.Float64())

	return models.RawClassification{
		Equipment:  equipment,
		Condition:  Grade(score),
		Confidence: models.ConfidenceFromInt(ConfidenceFor(score)),
	}, nil
}

func (c *Classifier) guessEquipment(filename string) string {
	name := strings.ToLower(filename)
	for _, rule := range filenameRules {
		for _, n := range rule.needles {
			if strings.Contains(name, n) {
				return rule.category
			}
		}
	}
	return archetypes[c.rng.IntN(len(archetypes))]
}

// Score combines the size factor with a random draw r in [0,1).
func Score(size int64, r float64) float64 {
	sizeFactor := math.Min(float64(size)/SizeSaturation, 1)
	if sizeFactor < 0 {
		sizeFactor = 0
	}
	return SizeWeight*sizeFactor + RandomWeight*r
}

// Grade maps a score onto the condition vocabulary.
func Grade(score float64) models.Condition {
	switch {
	case score > ExcellentThreshold:
		return models.ConditionExcellent
	case score > GoodThreshold:
		return models.ConditionGood
	case score > FairThreshold:
		return models.ConditionFair
	default:
		return models.ConditionPoor
	}
}

// ConfidenceFor returns floor(score*80 + 20), which lies in [20,100] for any
// score in [0,1].
func ConfidenceFor(score float64) int {
	return int(math.Floor(score*80 + 20))
}

var _ models.Classifier = (*Classifier)(nil)
