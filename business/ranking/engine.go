package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/business/embedding"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

// SignalSource is the read-only store surface the weighted mode needs.
type SignalSource interface {
	// InteractionCounts returns view+purchase counts keyed by product id.
	InteractionCounts(ctx context.Context, productIDs []uint64) (map[uint64]int64, error)

	// RecentCategories returns the categories of the subject's last `limit` views.
	RecentCategories(ctx context.Context, subjectID string, limit int) ([]string, error)
}

type Options struct {
	Mode  Mode
	Limit int
}

// Engine scores and orders candidate products. Scoring never fails: a
// missing signal contributes 0 to its term.
type Engine struct {
	cfg      Config
	signals  SignalSource
	embedder embedding.Provider
	now      func() time.Time
}

func NewEngine(cfg Config, signals SignalSource, embedder embedding.Provider) (*Engine, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("ranking config: %w", err)
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		signals:  signals,
		embedder: embedder,
		now:      time.Now,
	}, nil
}

// WithClock overrides the time source used for recency.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Weights() Weights {
	return e.cfg.Weights
}

// Rank returns candidates ordered by score descending, truncated to the
// limit. Equal scores keep their input order.
func (e *Engine) Rank(
	ctx context.Context,
	subjectID string,
	candidates []domain.Product,
	rctx domain.RecommendationContext,
	opts Options,
) []domain.ScoredProduct {

	if len(candidates) == 0 {
		return []domain.ScoredProduct{}
	}

	breakdowns := e.score(ctx, subjectID, candidates, rctx, opts.Mode)

	scored := make([]domain.ScoredProduct, len(candidates))
	for i, p := range candidates {
		scored[i] = domain.ScoredProduct{
			Product: p,
			Score:   breakdowns[i].FinalScore,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit < len(scored) {
		scored = scored[:limit]
	}

	return scored
}

// Explain returns the per-term breakdown for every candidate in input order.
func (e *Engine) Explain(
	ctx context.Context,
	subjectID string,
	candidates []domain.Product,
	rctx domain.RecommendationContext,
	mode Mode,
) []domain.ScoreBreakdown {
	if len(candidates) == 0 {
		return []domain.ScoreBreakdown{}
	}
	return e.score(ctx, subjectID, candidates, rctx, mode)
}

func (e *Engine) score(
	ctx context.Context,
	subjectID string,
	candidates []domain.Product,
	rctx domain.RecommendationContext,
	mode Mode,
) []domain.ScoreBreakdown {
	switch mode {
	case ModeEmbedding:
		return e.scoreEmbedding(ctx, candidates, rctx)
	case ModeWeighted:
		fallthrough
	default:
		return e.scoreWeighted(ctx, subjectID, candidates, rctx)
	}
}

func (e *Engine) scoreWeighted(
	ctx context.Context,
	subjectID string,
	candidates []domain.Product,
	rctx domain.RecommendationContext,
) []domain.ScoreBreakdown {

	tid := bandit.TraceIDFromContext(ctx)
	w := e.cfg.Weights
	now := e.now()

	counts, countsOK := e.interactionCounts(ctx, candidates, tid)
	recent, recentOK := e.recentCategories(ctx, subjectID, tid)

	out := make([]domain.ScoreBreakdown, len(candidates))
	for i, p := range candidates {
		b := domain.ScoreBreakdown{ProductID: p.ID}

		if countsOK {
			b.Popularity = popularityScore(counts[p.ID], e.cfg.PopularityCap)
		}
		if recentOK {
			b.Relevance = relevanceScore(p.Category, recent, e.cfg.RelevanceBaseline)
		}
		b.Recency = recencyScore(p.CreatedAt, now, e.cfg.RecencyWindow)
		b.Diversity = diversityScore(rctx.HasViewed(p.ID), e.cfg.DiversityPenalty)

		b.FinalScore = w.Popularity*b.Popularity +
			w.Relevance*b.Relevance +
			w.Recency*b.Recency +
			w.Diversity*b.Diversity

		out[i] = b
	}

	return out
}

func (e *Engine) scoreEmbedding(
	ctx context.Context,
	candidates []domain.Product,
	rctx domain.RecommendationContext,
) []domain.ScoreBreakdown {

	out := make([]domain.ScoreBreakdown, len(candidates))
	for i, p := range candidates {
		out[i].ProductID = p.ID
	}
	if e.embedder == nil {
		return out
	}

	tid := bandit.TraceIDFromContext(ctx)
	contextText := strings.TrimSpace(rctx.SessionText + " " + rctx.Query)

	ctxVec, err := e.embedder.Embed(ctx, contextText)
	if err != nil {
		logger.Warn("ranking_context_embedding_failed", "trace_id", tid, "error", err)
		return out
	}

	for i, p := range candidates {
		vec, err := e.embedder.Embed(ctx, p.Text())
		if err != nil {
			logger.Warn("ranking_candidate_embedding_failed", "trace_id", tid, "product_id", p.ID, "error", err)
			continue
		}
		sim := e.embedder.Similarity(ctxVec, vec)
		out[i].Similarity = sim
		out[i].FinalScore = sim
	}

	return out
}

func (e *Engine) interactionCounts(ctx context.Context, candidates []domain.Product, tid string) (map[uint64]int64, bool) {
	if e.signals == nil {
		return nil, false
	}

	ids := make([]uint64, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}

	counts, err := e.signals.InteractionCounts(ctx, ids)
	if err != nil {
		logger.Warn("ranking_popularity_signal_failed", "trace_id", tid, "error", err)
		return nil, false
	}
	return counts, true
}

func (e *Engine) recentCategories(ctx context.Context, subjectID, tid string) (map[string]struct{}, bool) {
	if e.signals == nil {
		return nil, false
	}

	cats, err := e.signals.RecentCategories(ctx, subjectID, e.cfg.HistorySize)
	if err != nil {
		logger.Warn("ranking_relevance_signal_failed", "trace_id", tid, "subject_id", subjectID, "error", err)
		return nil, false
	}

	set := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set, true
}
