package ranking

import (
	"math"
	"time"
)

// popularityScore = min(1, count/saturation); negative counts are treated as 0.
func popularityScore(count int64, saturation float64) float64 {
	if count <= 0 || saturation <= 0 {
		return 0
	}
	return math.Min(1, float64(count)/saturation)
}

func relevanceScore(category string, recent map[string]struct{}, baseline float64) float64 {
	if _, ok := recent[category]; ok && category != "" {
		return 1
	}
	return baseline
}

// recencyScore decays linearly from 1 at creation to 0 at window.
// A zero createdAt has no signal; a future one counts as brand new.
func recencyScore(createdAt, now time.Time, window time.Duration) float64 {
	if createdAt.IsZero() || window <= 0 {
		return 0
	}
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	return clamp01(1 - float64(age)/float64(window))
}

func diversityScore(alreadyViewed bool, penalty float64) float64 {
	if alreadyViewed {
		return penalty
	}
	return 1
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
