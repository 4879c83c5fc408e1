package ranking

import (
	"fmt"
	"math"
	"time"

	"recoEngine/domain"
)

type Mode string

const (
	ModeWeighted  Mode = "weighted"
	ModeEmbedding Mode = "embedding"
)

// Weights of the multi-factor composite. They must sum to 1.
type Weights struct {
	Popularity float64 `json:"popularity"`
	Relevance  float64 `json:"relevance"`
	Recency    float64 `json:"recency"`
	Diversity  float64 `json:"diversity"`
}

const weightSumTolerance = 1e-9

func DefaultWeights() Weights {
	return Weights{
		Popularity: 0.3,
		Relevance:  0.4,
		Recency:    0.2,
		Diversity:  0.1,
	}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"popularity": w.Popularity,
		"relevance":  w.Relevance,
		"recency":    w.Recency,
		"diversity":  w.Diversity,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: weight %s=%v out of [0,1]", domain.ErrInvalidArgument, name, v)
		}
	}

	sum := w.Popularity + w.Relevance + w.Recency + w.Diversity
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %v", domain.ErrInvalidArgument, sum)
	}
	return nil
}

type Config struct {
	Weights Weights

	// DefaultLimit caps the ranked output when the caller passes no limit.
	DefaultLimit int

	// HistorySize is how many recent interactions feed category relevance.
	HistorySize int

	// PopularityCap is the interaction count that saturates popularity at 1.
	PopularityCap float64

	RelevanceBaseline float64
	RecencyWindow     time.Duration
	DiversityPenalty  float64
}

const (
	defaultLimit             = 10
	defaultHistorySize       = 50
	defaultPopularityCap     = 100
	defaultRelevanceBaseline = 0.2
	defaultRecencyWindow     = 30 * 24 * time.Hour
	defaultDiversityPenalty  = 0.1
)

func DefaultConfig() Config {
	return Config{
		Weights:           DefaultWeights(),
		DefaultLimit:      defaultLimit,
		HistorySize:       defaultHistorySize,
		PopularityCap:     defaultPopularityCap,
		RelevanceBaseline: defaultRelevanceBaseline,
		RecencyWindow:     defaultRecencyWindow,
		DiversityPenalty:  defaultDiversityPenalty,
	}
}

// withDefaults fills zero fields so a partially populated Config stays usable.
func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultLimit
	}
	if c.HistorySize <= 0 {
		c.HistorySize = defaultHistorySize
	}
	if c.PopularityCap <= 0 {
		c.PopularityCap = defaultPopularityCap
	}
	if c.RelevanceBaseline <= 0 {
		c.RelevanceBaseline = defaultRelevanceBaseline
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = defaultRecencyWindow
	}
	if c.DiversityPenalty <= 0 {
		c.DiversityPenalty = defaultDiversityPenalty
	}
	return c
}
