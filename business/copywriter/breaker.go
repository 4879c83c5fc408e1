package copywriter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recoEngine/domain"
	"recoEngine/pkg/logger"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("copy generation rate limited")

type BreakerConfig struct {
	Name string

	// RatePerSecond <= 0 disables the limiter.
	RatePerSecond float64
	Burst         int

	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:          "copy-service",
		RatePerSecond: 20,
		Burst:         40,
		MaxRequests:   3,
		Interval:      time.Minute,
		Timeout:       30 * time.Second,
		MinRequests:   10,
		FailureRatio:  0.6,
	}
}

// BreakerGenerator guards a remote generator with a rate limiter and a
// circuit breaker so a failing copy service cannot slow down ranking.
type BreakerGenerator struct {
	next    Generator
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	name    string
}

func NewBreakerGenerator(next Generator, cfg BreakerConfig) *BreakerGenerator {
	name := cfg.Name
	if name == "" {
		name = DefaultBreakerConfig().Name
	}

	BreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logger.Warn("copy_breaker_opening", "failures", int64(counts.TotalFailures), "failure_rate", failureRatio)
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("copy_breaker_state_change", "breaker", name, "from", from.String(), "to", to.String())
			BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &BreakerGenerator{next: next, cb: cb, limiter: limiter, name: name}
}

func (g *BreakerGenerator) Generate(ctx context.Context, p domain.Product) (string, error) {
	return g.guard(func() (string, error) {
		return g.next.Generate(ctx, p)
	})
}

// Personalize shares the limiter and breaker with Generate. A delegate that
// cannot personalize gets the fixed pitch without a remote call.
func (g *BreakerGenerator) Personalize(ctx context.Context, subjectID string, p domain.Product) (string, error) {
	pz, ok := g.next.(Personalizer)
	if !ok {
		return FallbackPitch(p), nil
	}
	return g.guard(func() (string, error) {
		return pz.Personalize(ctx, subjectID, p)
	})
}

func (g *BreakerGenerator) guard(call func() (string, error)) (string, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		BreakerRequestsTotal.WithLabelValues(g.name, "limited").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, ErrRateLimited)
	}

	text, err := g.cb.Execute(call)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			BreakerRequestsTotal.WithLabelValues(g.name, "rejected").Inc()
		} else {
			BreakerRequestsTotal.WithLabelValues(g.name, "failure").Inc()
		}
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	BreakerRequestsTotal.WithLabelValues(g.name, "success").Inc()
	return text, nil
}

func (g *BreakerGenerator) State() gobreaker.State {
	return g.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
