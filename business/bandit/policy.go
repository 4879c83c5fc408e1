package bandit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"recoEngine/domain"
	"recoEngine/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

// PerformanceStore holds trials/successes per (scope, arm) and the append-only
// decision log. Increment must be a single atomic update, never a read
// followed by a write.
type PerformanceStore interface {
	Get(ctx context.Context, scope string, names []string) (map[string]domain.PerformanceRecord, error)
	Increment(ctx context.Context, scope, name string, success bool) error
	AppendDecision(ctx context.Context, d domain.Decision) error
}

// ---- Usecase / Service ----

type Selection struct {
	Strategy   string              `json:"strategy"`
	Index      int                 `json:"index"`
	Mode       domain.DecisionMode `json:"mode"`
	DecisionID string              `json:"decision_id"`
}

// Policy is an epsilon-greedy selector over named arms.
// It is safe for concurrent use.
type Policy struct {
	cfg   Config
	store PerformanceStore

	rngMu sync.Mutex
	rng   *rand.Rand

	now   func() time.Time
	newID func() string
}

type Option func(*Policy)

// WithRand injects the random source, mainly for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(p *Policy) { p.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

func NewPolicy(cfg Config, store PerformanceStore, opts ...Option) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: bandit policy needs a performance store", domain.ErrInvalidArgument)
	}

	p := &Policy{
		cfg:   cfg,
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // exploration does not need crypto randomness
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Policy) Epsilon() float64 {
	return p.cfg.Epsilon
}

// Select picks one of the registered strategies for subjectID.
func (p *Policy) Select(ctx context.Context, subjectID string, strategies []string) (Selection, error) {
	return p.SelectInScope(ctx, domain.ScopeStrategies, subjectID, strategies)
}

// SelectInScope runs epsilon-greedy over arms inside scope and appends
// the decision before returning it.
func (p *Policy) SelectInScope(ctx context.Context, scope, subjectID string, arms []string) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return Selection{}, fmt.Errorf("context error: %w", err)
	}
	if len(arms) == 0 {
		return Selection{}, fmt.Errorf("%w: at least one strategy is required", domain.ErrInvalidArgument)
	}

	tid := TraceIDFromContext(ctx)

	var (
		idx  int
		mode domain.DecisionMode
	)

	if p.float64() < p.cfg.Epsilon {
		mode = domain.ModeExplore
		idx = p.intn(len(arms))
	} else {
		mode = domain.ModeExploit
		records, err := p.store.Get(ctx, scope, arms)
		if err != nil {
			// no snapshot: exploit degrades to first-registered order
			logger.Warn("bandit_performance_read_failed",
				"trace_id", tid,
				"scope", scope,
				"error", err,
			)
			records = nil
		}
		idx = bestArm(arms, records, func(name string, err error) {
			logger.Warn("bandit_performance_record_clamped",
				"trace_id", tid,
				"scope", scope,
				"strategy", name,
				"error", err,
			)
		})
	}

	sel := Selection{
		Strategy:   arms[idx],
		Index:      idx,
		Mode:       mode,
		DecisionID: p.newID(),
	}

	decision := domain.Decision{
		ID:           sel.DecisionID,
		SubjectID:    subjectID,
		Scope:        scope,
		StrategyName: sel.Strategy,
		Mode:         mode,
		Details: datatypes.JSONMap{
			"epsilon":     p.cfg.Epsilon,
			"arms":        len(arms),
			"impressions": 1,
			"clicks":      0,
		},
		Timestamp: p.now(),
	}
	if err := p.store.AppendDecision(ctx, decision); err != nil {
		return Selection{}, fmt.Errorf("%w: record decision: %v", domain.ErrUpstreamUnavailable, err)
	}

	BanditDecisionsTotal.WithLabelValues(scope, sel.Strategy, string(mode)).Inc()

	logger.Debug("bandit_select",
		"trace_id", tid,
		"subject_id", subjectID,
		"scope", scope,
		"strategy", sel.Strategy,
		"mode", string(mode),
		"arms", len(arms),
	)

	return sel, nil
}

// RecordOutcome reports whether a served strategy led to a positive outcome.
func (p *Policy) RecordOutcome(ctx context.Context, strategy string, success bool) error {
	return p.RecordOutcomeInScope(ctx, domain.ScopeStrategies, strategy, success)
}

func (p *Policy) RecordOutcomeInScope(ctx context.Context, scope, name string, success bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if name == "" {
		return fmt.Errorf("%w: strategy name is required", domain.ErrInvalidArgument)
	}

	if err := p.store.Increment(ctx, scope, name, success); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return err
		}
		return fmt.Errorf("%w: record outcome: %v", domain.ErrUpstreamUnavailable, err)
	}

	result := "failure"
	if success {
		result = "success"
	}
	BanditOutcomesTotal.WithLabelValues(scope, name, result).Inc()

	logger.Debug("bandit_outcome",
		"trace_id", TraceIDFromContext(ctx),
		"scope", scope,
		"strategy", name,
		"success", success,
	)
	return nil
}

func (p *Policy) float64() float64 {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.Float64()
}

func (p *Policy) intn(n int) int {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.Intn(n)
}
