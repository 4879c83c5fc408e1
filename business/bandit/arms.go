package bandit

import (
	"fmt"

	"recoEngine/domain"
)

// bestArm returns the index of the arm with the highest success rate.
// Strict comparison keeps the earliest arm on ties, so an empty or all-zero
// snapshot resolves to index 0. Inconsistent records are clamped before
// scoring and reported through onClamp.
func bestArm(names []string, snapshot map[string]domain.PerformanceRecord, onClamp func(name string, err error)) int {
	best, bestRate := 0, -1.0
	for i, name := range names {
		rec, err := sanitize(snapshot[name])
		if err != nil && onClamp != nil {
			onClamp(name, err)
		}
		if rate := rec.SuccessRate(); rate > bestRate {
			best, bestRate = i, rate
		}
	}
	return best
}

func sanitize(rec domain.PerformanceRecord) (domain.PerformanceRecord, error) {
	var err error
	if rec.Trials < 0 || rec.Successes < 0 {
		err = fmt.Errorf("%w: negative counters trials=%d successes=%d", domain.ErrDataInconsistency, rec.Trials, rec.Successes)
		rec.Trials = max(rec.Trials, 0)
		rec.Successes = max(rec.Successes, 0)
	}
	if rec.Successes > rec.Trials {
		err = fmt.Errorf("%w: successes %d exceed trials %d", domain.ErrDataInconsistency, rec.Successes, rec.Trials)
		rec.Successes = rec.Trials
	}
	return rec, err
}
