package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/business/copywriter"
	"recoEngine/business/ranking"
	"recoEngine/business/resultcache"
	"recoEngine/business/strategy"
	"recoEngine/domain"
	"recoEngine/pkg/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Selector is the bandit surface the orchestrator needs.
type Selector interface {
	Select(ctx context.Context, subjectID string, strategies []string) (bandit.Selection, error)
	RecordOutcome(ctx context.Context, strategy string, success bool) error
}

type Ranker interface {
	Rank(ctx context.Context, subjectID string, candidates []domain.Product, rctx domain.RecommendationContext, opts ranking.Options) []domain.ScoredProduct
	Explain(ctx context.Context, subjectID string, candidates []domain.Product, rctx domain.RecommendationContext, mode ranking.Mode) []domain.ScoreBreakdown
}

// DecisionLog reads back the selections recorded for a subject.
type DecisionLog interface {
	RecentDecisions(ctx context.Context, subjectID string, limit int) ([]domain.Decision, error)
}

type Config struct {
	Limit             int
	FetchTimeout      time.Duration
	EnrichTimeout     time.Duration
	EnrichConcurrency int

	// ComputeTimeout bounds a pipeline run when the caller sets no deadline.
	ComputeTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Limit:             10,
		FetchTimeout:      2 * time.Second,
		EnrichTimeout:     1500 * time.Millisecond,
		EnrichConcurrency: 4,
		ComputeTimeout:    5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = d.EnrichTimeout
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = d.EnrichConcurrency
	}
	if c.ComputeTimeout <= 0 {
		c.ComputeTimeout = d.ComputeTimeout
	}
	return c
}

type Service struct {
	cfg      Config
	selector Selector
	registry *strategy.Registry
	ranker   Ranker
	copyGen  copywriter.Generator
	cache    *resultcache.Cache
	history  DecisionLog

	group singleflight.Group
	now   func() time.Time
}

// NewService wires the pipeline. copyGen and cache may be nil: items then keep
// their stored description and every request is computed. A nil history
// leaves Decisions without rows.
func NewService(
	cfg Config,
	selector Selector,
	registry *strategy.Registry,
	ranker Ranker,
	copyGen copywriter.Generator,
	cache *resultcache.Cache,
	history DecisionLog,
) *Service {
	return &Service{
		cfg:      cfg.withDefaults(),
		selector: selector,
		registry: registry,
		ranker:   ranker,
		copyGen:  copyGen,
		cache:    cache,
		history:  history,
		now:      time.Now,
	}
}

func emptyResult(subjectID string, at time.Time) domain.RecommendationResult {
	return domain.RecommendationResult{
		SubjectID:   subjectID,
		Items:       []domain.ScoredProduct{},
		GeneratedAt: at,
	}
}

// Recommend returns the ranked list for subjectID. Only invalid input is an
// error; upstream failures degrade to an empty result.
func (s *Service) Recommend(ctx context.Context, subjectID string, rctx domain.RecommendationContext) (domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("context error: %w", err)
	}
	if subjectID == "" {
		return domain.RecommendationResult{}, fmt.Errorf("%w: subject id is required", domain.ErrInvalidArgument)
	}

	key := resultcache.RecommendationsKey(subjectID)

	var cached domain.RecommendationResult
	if s.cache.Get(ctx, key, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	// Concurrent misses for one subject share a single pipeline run. The run
	// outlives a cancelled caller but never its deadline.
	ch := s.group.DoChan(key, func() (any, error) {
		runCtx, cancel := s.detach(ctx)
		defer cancel()
		return s.compute(runCtx, subjectID, rctx)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return domain.RecommendationResult{}, r.Err
		}
		if r.Shared {
			logger.Debug("recommend_coalesced", "trace_id", bandit.TraceIDFromContext(ctx), "subject_id", subjectID)
		}
		return r.Val.(domain.RecommendationResult), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("recommend_deadline_exceeded", "trace_id", bandit.TraceIDFromContext(ctx), "subject_id", subjectID)
			return emptyResult(subjectID, s.now()), nil
		}
		return domain.RecommendationResult{}, fmt.Errorf("context error: %w", ctx.Err())
	}
}

// detach keeps ctx values but drops its cancellation. The run ends at the
// caller's deadline or after ComputeTimeout, whichever comes first.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline := time.Now().Add(s.cfg.ComputeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	return context.WithDeadline(context.WithoutCancel(ctx), deadline)
}

func (s *Service) compute(ctx context.Context, subjectID string, rctx domain.RecommendationContext) (domain.RecommendationResult, error) {
	tid := bandit.TraceIDFromContext(ctx)

	sel, err := s.selector.Select(ctx, subjectID, s.registry.Names())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return domain.RecommendationResult{}, err
		}
		logger.Error("recommend_selection_failed", "trace_id", tid, "subject_id", subjectID, "error", err)
		return emptyResult(subjectID, s.now()), nil
	}

	strat, ok := s.registry.Get(sel.Strategy)
	if !ok {
		logger.Error("recommend_unknown_strategy", "trace_id", tid, "strategy", sel.Strategy)
		return emptyResult(subjectID, s.now()), nil
	}

	candidates := s.fetch(ctx, strat, subjectID)

	items := s.ranker.Rank(ctx, subjectID, candidates, rctx, ranking.Options{
		Mode:  strat.Mode(),
		Limit: s.cfg.Limit,
	})

	s.enrich(ctx, subjectID, items)

	res := domain.RecommendationResult{
		SubjectID:   subjectID,
		Strategy:    sel.Strategy,
		Mode:        sel.Mode,
		Items:       items,
		GeneratedAt: s.now(),
	}

	if len(items) > 0 {
		s.cache.Set(ctx, resultcache.RecommendationsKey(subjectID), res, resultcache.RecommendationsTTL)
	}

	logger.Info("recommend_served",
		"trace_id", tid,
		"subject_id", subjectID,
		"strategy", sel.Strategy,
		"mode", string(sel.Mode),
		"candidates", len(candidates),
		"items", len(items),
	)

	return res, nil
}

func (s *Service) fetch(ctx context.Context, strat strategy.Strategy, subjectID string) []domain.Product {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	candidates, err := strat.Fetch(fetchCtx, subjectID)
	if err != nil {
		logger.Warn("recommend_fetch_failed",
			"trace_id", bandit.TraceIDFromContext(ctx),
			"strategy", strat.Name(),
			"error", err,
		)
		return nil
	}
	return candidates
}

// enrich fills copy fields in place. Each item is independent; a failed or
// slow generation falls back to the stored description and the fixed pitch.
func (s *Service) enrich(ctx context.Context, subjectID string, items []domain.ScoredProduct) {
	if len(items) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.EnrichConcurrency)

	for i := range items {
		g.Go(func() error {
			item := &items[i]
			item.EnhancedDescription = item.Description
			item.PersonalizedRecommendation = copywriter.FallbackPitch(item.Product)

			if s.copyGen == nil {
				return nil
			}

			itemCtx, cancel := context.WithTimeout(ctx, s.cfg.EnrichTimeout)
			defer cancel()

			if text, ok := s.generate(itemCtx, item.Product); ok {
				item.EnhancedDescription = text
			}
			if text, ok := s.personalize(itemCtx, subjectID, item.Product); ok {
				item.PersonalizedRecommendation = text
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) generate(ctx context.Context, p domain.Product) (string, bool) {
	text, err := s.copyGen.Generate(ctx, p)
	if err != nil {
		logger.Debug("recommend_enrich_fallback",
			"trace_id", bandit.TraceIDFromContext(ctx),
			"product_id", p.ID,
			"error", err,
		)
		return "", false
	}
	return text, text != ""
}

func (s *Service) personalize(ctx context.Context, subjectID string, p domain.Product) (string, bool) {
	pz, ok := s.copyGen.(copywriter.Personalizer)
	if !ok {
		return "", false
	}
	text, err := pz.Personalize(ctx, subjectID, p)
	if err != nil {
		logger.Debug("recommend_personalize_fallback",
			"trace_id", bandit.TraceIDFromContext(ctx),
			"product_id", p.ID,
			"error", err,
		)
		return "", false
	}
	return text, text != ""
}

// Feedback records whether the strategy served to subjectID worked and
// drops the subject's cached list.
func (s *Service) Feedback(ctx context.Context, subjectID, strategyName string, wasSuccessful bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if subjectID == "" {
		return fmt.Errorf("%w: subject id is required", domain.ErrInvalidArgument)
	}
	if _, ok := s.registry.Get(strategyName); !ok {
		return fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidArgument, strategyName)
	}

	if err := s.selector.RecordOutcome(ctx, strategyName, wasSuccessful); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, resultcache.RecommendationsKey(subjectID))

	logger.Info("recommend_feedback",
		"trace_id", bandit.TraceIDFromContext(ctx),
		"subject_id", subjectID,
		"strategy", strategyName,
		"success", wasSuccessful,
	)
	return nil
}

// Explain scores the candidates of one strategy without caching or
// logging a decision. An empty name means the first registered strategy.
func (s *Service) Explain(ctx context.Context, subjectID, strategyName string, rctx domain.RecommendationContext) ([]domain.ScoreBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject id is required", domain.ErrInvalidArgument)
	}

	if strategyName == "" {
		names := s.registry.Names()
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no strategies registered", domain.ErrInvalidArgument)
		}
		strategyName = names[0]
	}

	strat, ok := s.registry.Get(strategyName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidArgument, strategyName)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	candidates, err := strat.Fetch(fetchCtx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch candidates: %v", domain.ErrUpstreamUnavailable, err)
	}

	return s.ranker.Explain(ctx, subjectID, candidates, rctx, strat.Mode()), nil
}

// Strategies lists the registered strategy names in order.
func (s *Service) Strategies() []string {
	return s.registry.Names()
}

// Decisions returns the registered strategies together with the subject's
// latest bandit decisions, newest first.
func (s *Service) Decisions(ctx context.Context, subjectID string, limit int) (domain.DecisionHistory, error) {
	if err := ctx.Err(); err != nil {
		return domain.DecisionHistory{}, fmt.Errorf("context error: %w", err)
	}
	if subjectID == "" {
		return domain.DecisionHistory{}, fmt.Errorf("%w: subject id is required", domain.ErrInvalidArgument)
	}

	out := domain.DecisionHistory{
		SubjectID:  subjectID,
		Strategies: s.Strategies(),
		Decisions:  []domain.Decision{},
	}
	if s.history == nil {
		return out, nil
	}

	rows, err := s.history.RecentDecisions(ctx, subjectID, limit)
	if err != nil {
		return domain.DecisionHistory{}, fmt.Errorf("%w: decision log: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(rows) > 0 {
		out.Decisions = rows
	}
	return out, nil
}
