package bandit

import (
	"fmt"
	"math"

	"recoEngine/domain"
)

type Config struct {
	// Epsilon is the probability of exploring a uniformly random arm.
	Epsilon float64
}

const defaultEpsilon = 0.1

func DefaultConfig() Config {
	return Config{Epsilon: defaultEpsilon}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Epsilon) || c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon must be in [0,1], got %v", domain.ErrInvalidArgument, c.Epsilon)
	}
	return nil
}
