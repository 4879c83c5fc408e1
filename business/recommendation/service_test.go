//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/business/copywriter"
	"recoEngine/business/ranking"
	"recoEngine/business/resultcache"
	"recoEngine/business/strategy"
	"recoEngine/domain"
	"recoEngine/internal/repository/memory"
)

type fakeSelector struct {
	pick     string
	mode     domain.DecisionMode
	err      error
	gate     chan struct{}
	block    bool
	deadline atomic.Bool
	calls    atomic.Int32
	mu       sync.Mutex
	outcomes map[string][]bool
}

func (f *fakeSelector) Select(ctx context.Context, _ string, names []string) (bandit.Selection, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.block {
		_, ok := ctx.Deadline()
		f.deadline.Store(ok)
		<-ctx.Done()
		return bandit.Selection{}, ctx.Err()
	}
	if f.err != nil {
		return bandit.Selection{}, f.err
	}
	if len(names) == 0 {
		return bandit.Selection{}, domain.ErrInvalidArgument
	}
	pick := f.pick
	if pick == "" {
		pick = names[0]
	}
	return bandit.Selection{Strategy: pick, Mode: f.mode, DecisionID: "d-1"}, nil
}

func (f *fakeSelector) RecordOutcome(_ context.Context, name string, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = make(map[string][]bool)
	}
	f.outcomes[name] = append(f.outcomes[name], success)
	return nil
}

type fakeStrategy struct {
	name     string
	mode     ranking.Mode
	products []domain.Product
	err      error
}

func (f *fakeStrategy) Name() string       { return f.name }
func (f *fakeStrategy) Mode() ranking.Mode { return f.mode }
func (f *fakeStrategy) Fetch(context.Context, string) ([]domain.Product, error) {
	return f.products, f.err
}

// orderRanker keeps fetch order and assigns descending scores.
type orderRanker struct {
	gotMode ranking.Mode
}

func (r *orderRanker) Rank(_ context.Context, _ string, candidates []domain.Product, _ domain.RecommendationContext, opts ranking.Options) []domain.ScoredProduct {
	r.gotMode = opts.Mode
	out := make([]domain.ScoredProduct, 0, len(candidates))
	for i, p := range candidates {
		if opts.Limit > 0 && i >= opts.Limit {
			break
		}
		out = append(out, domain.ScoredProduct{Product: p, Score: 1 / float64(i+1)})
	}
	return out
}

func (r *orderRanker) Explain(_ context.Context, _ string, candidates []domain.Product, _ domain.RecommendationContext, _ ranking.Mode) []domain.ScoreBreakdown {
	out := make([]domain.ScoreBreakdown, len(candidates))
	for i, p := range candidates {
		out[i] = domain.ScoreBreakdown{ProductID: p.ID, FinalScore: 1}
	}
	return out
}

type decisionLog struct {
	rows     []domain.Decision
	err      error
	gotLimit int
}

func (d *decisionLog) RecentDecisions(_ context.Context, _ string, limit int) ([]domain.Decision, error) {
	d.gotLimit = limit
	return d.rows, d.err
}

type copyFunc func(ctx context.Context, p domain.Product) (string, error)

func (f copyFunc) Generate(ctx context.Context, p domain.Product) (string, error) { return f(ctx, p) }

type pitchCopy struct {
	copyFunc
	pitch func(ctx context.Context, subjectID string, p domain.Product) (string, error)
}

func (c pitchCopy) Personalize(ctx context.Context, subjectID string, p domain.Product) (string, error) {
	return c.pitch(ctx, subjectID, p)
}

var catalog = []domain.Product{
	{ID: 1, Name: "Yoga Mat", Category: "Fitness", Description: "non-slip"},
	{ID: 2, Name: "Smart Watch", Category: "Electronics", Description: "tracks sleep"},
}

type fixture struct {
	svc      *Service
	selector *fakeSelector
	ranker   *orderRanker
	popular  *fakeStrategy
	category *fakeStrategy
}

func newFixture(t *testing.T, gen copyFunc) *fixture {
	t.Helper()

	popular := &fakeStrategy{name: strategy.PopularityBased, mode: ranking.ModeWeighted, products: catalog}
	category := &fakeStrategy{name: strategy.CategoryBased, mode: ranking.ModeEmbedding, products: catalog[1:]}
	reg, err := strategy.NewRegistry(popular, category)
	if err != nil {
		t.Fatal(err)
	}

	backend := memory.NewCache(100, time.Minute)
	t.Cleanup(backend.Close)

	f := &fixture{
		selector: &fakeSelector{mode: domain.ModeExploit},
		ranker:   &orderRanker{},
		popular:  popular,
		category: category,
	}
	cfg := DefaultConfig()
	cfg.EnrichTimeout = 50 * time.Millisecond

	var g copywriter.Generator
	if gen != nil {
		g = gen
	}
	f.svc = NewService(cfg, f.selector, reg, f.ranker, g, resultcache.New(backend, time.Second), nil)
	return f
}

func TestRecommend_EmptySubject(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.svc.Recommend(context.Background(), "", domain.RecommendationContext{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestRecommend_PipelineAndCache(t *testing.T) {
	f := newFixture(t, func(_ context.Context, p domain.Product) (string, error) {
		return "fresh copy for " + p.Name, nil
	})
	ctx := context.Background()

	res, err := f.svc.Recommend(ctx, "u-1", domain.RecommendationContext{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != strategy.PopularityBased || res.Mode != domain.ModeExploit || res.CacheHit {
		t.Fatalf("unexpected result header %+v", res)
	}
	if len(res.Items) != 2 || res.Items[0].ID != 1 {
		t.Fatalf("items = %+v", res.Items)
	}
	if res.Items[0].EnhancedDescription != "fresh copy for Yoga Mat" {
		t.Errorf("enhanced = %q", res.Items[0].EnhancedDescription)
	}
	if res.Items[1].PersonalizedRecommendation != "Check out Smart Watch - a great product in our Electronics collection!" {
		t.Errorf("personalized = %q", res.Items[1].PersonalizedRecommendation)
	}
	if f.ranker.gotMode != ranking.ModeWeighted {
		t.Errorf("rank mode = %s", f.ranker.gotMode)
	}

	again, err := f.svc.Recommend(ctx, "u-1", domain.RecommendationContext{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || len(again.Items) != 2 {
		t.Fatalf("second call should be a cache hit, got %+v", again)
	}
	if f.selector.calls.Load() != 1 {
		t.Fatalf("selector calls = %d, want 1", f.selector.calls.Load())
	}
}

func TestRecommend_UsesSelectedStrategyMode(t *testing.T) {
	f := newFixture(t, nil)
	f.selector.pick = strategy.CategoryBased

	res, err := f.svc.Recommend(context.Background(), "u-2", domain.RecommendationContext{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != strategy.CategoryBased || f.ranker.gotMode != ranking.ModeEmbedding {
		t.Fatalf("strategy %s mode %s", res.Strategy, f.ranker.gotMode)
	}
	if len(res.Items) != 1 || res.Items[0].EnhancedDescription != "tracks sleep" {
		t.Fatalf("without a generator items keep their description: %+v", res.Items)
	}
}

func TestRecommend_FetchFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.popular.err = errors.New("db down")

	res, err := f.svc.Recommend(context.Background(), "u-3", domain.RecommendationContext{})
	if err != nil {
		t.Fatalf("fetch failure must not be an error: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("items = %#v, want empty", res.Items)
	}

	// empty results are not cached
	f.popular.err = nil
	res, _ = f.svc.Recommend(context.Background(), "u-3", domain.RecommendationContext{})
	if res.CacheHit || len(res.Items) != 2 {
		t.Fatalf("recovered call = %+v", res)
	}
}

func TestRecommend_SelectionFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.selector.err = domain.ErrUpstreamUnavailable

	res, err := f.svc.Recommend(context.Background(), "u-4", domain.RecommendationContext{})
	if err != nil || len(res.Items) != 0 {
		t.Fatalf("got %+v, %v", res, err)
	}
}

func TestRecommend_SlowEnrichmentFallsBack(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, _ domain.Product) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	})

	start := time.Now()
	res, err := f.svc.Recommend(context.Background(), "u-5", domain.RecommendationContext{})
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("enrichment timeout not applied")
	}
	if res.Items[0].EnhancedDescription != "non-slip" {
		t.Fatalf("fallback description = %q", res.Items[0].EnhancedDescription)
	}
}

func TestRecommend_PersonalizesThroughGenerator(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.copyGen = pitchCopy{
		copyFunc: func(context.Context, domain.Product) (string, error) { return "", errors.New("down") },
		pitch: func(ctx context.Context, subjectID string, p domain.Product) (string, error) {
			if p.ID == 2 {
				<-ctx.Done()
				return "", ctx.Err()
			}
			return "Picked for " + subjectID, nil
		},
	}

	start := time.Now()
	res, err := f.svc.Recommend(context.Background(), "u-8", domain.RecommendationContext{})
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("personalization timeout not applied")
	}
	if res.Items[0].PersonalizedRecommendation != "Picked for u-8" {
		t.Errorf("generated pitch = %q", res.Items[0].PersonalizedRecommendation)
	}
	if res.Items[1].PersonalizedRecommendation != copywriter.FallbackPitch(catalog[1]) {
		t.Errorf("fallback pitch = %q", res.Items[1].PersonalizedRecommendation)
	}
	if res.Items[0].EnhancedDescription != "non-slip" {
		t.Errorf("description = %q", res.Items[0].EnhancedDescription)
	}
}

func TestRecommend_HonoursCallerDeadline(t *testing.T) {
	f := newFixture(t, nil)
	f.selector.block = true

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := f.svc.Recommend(ctx, "u-9", domain.RecommendationContext{})
	if err != nil {
		t.Fatalf("deadline must degrade to empty, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("returned after %s", elapsed)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("items = %#v, want empty", res.Items)
	}
	if !f.selector.deadline.Load() {
		t.Fatal("pipeline context carries no deadline")
	}
}

func TestRecommend_CancelledCallerAndComputeTimeout(t *testing.T) {
	f := newFixture(t, nil)
	f.selector.block = true
	f.svc.cfg.ComputeTimeout = 150 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	if _, err := f.svc.Recommend(ctx, "u-10", domain.RecommendationContext{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	// a caller without a deadline is still bounded by ComputeTimeout
	start := time.Now()
	res, err := f.svc.Recommend(context.Background(), "u-11", domain.RecommendationContext{})
	if err != nil || len(res.Items) != 0 {
		t.Fatalf("got %+v, %v", res, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("returned after %s", elapsed)
	}
	if !f.selector.deadline.Load() {
		t.Fatal("pipeline context carries no deadline")
	}
}

func TestRecommend_CoalescesConcurrentMisses(t *testing.T) {
	f := newFixture(t, nil)
	f.selector.gate = make(chan struct{})

	const n = 10
	var wg sync.WaitGroup
	results := make([]domain.RecommendationResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Recommend(context.Background(), "hot", domain.RecommendationContext{})
			if err != nil {
				t.Error(err)
			}
			results[i] = res
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(f.selector.gate)
	wg.Wait()

	if got := f.selector.calls.Load(); got != 1 {
		t.Fatalf("selector calls = %d, want 1", got)
	}
	for i, r := range results {
		if len(r.Items) != 2 {
			t.Fatalf("caller %d got %d items", i, len(r.Items))
		}
	}
}

func TestFeedback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.svc.Feedback(ctx, "u-1", "nope", true); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("unknown strategy: %v", err)
	}
	if err := f.svc.Feedback(ctx, "", strategy.PopularityBased, true); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty subject: %v", err)
	}

	if _, err := f.svc.Recommend(ctx, "u-1", domain.RecommendationContext{}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Feedback(ctx, "u-1", strategy.PopularityBased, true); err != nil {
		t.Fatal(err)
	}
	if got := f.selector.outcomes[strategy.PopularityBased]; len(got) != 1 || !got[0] {
		t.Fatalf("outcomes = %v", got)
	}

	res, _ := f.svc.Recommend(ctx, "u-1", domain.RecommendationContext{})
	if res.CacheHit {
		t.Fatal("feedback must invalidate the cached list")
	}
}

func TestExplain(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got, err := f.svc.Explain(ctx, "u-1", "", domain.RecommendationContext{})
	if err != nil || len(got) != 2 {
		t.Fatalf("default strategy: %v, %v", got, err)
	}

	got, err = f.svc.Explain(ctx, "u-1", strategy.CategoryBased, domain.RecommendationContext{})
	if err != nil || len(got) != 1 || got[0].ProductID != 2 {
		t.Fatalf("category strategy: %v, %v", got, err)
	}

	if _, err := f.svc.Explain(ctx, "u-1", "nope", domain.RecommendationContext{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("unknown: %v", err)
	}

	f.popular.err = errors.New("db down")
	if _, err := f.svc.Explain(ctx, "u-1", strategy.PopularityBased, domain.RecommendationContext{}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("fetch failure: %v", err)
	}
	if f.selector.calls.Load() != 0 {
		t.Fatal("Explain must not log a decision")
	}
}

func TestDecisions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got, err := f.svc.Decisions(ctx, "u-1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Strategies) != 2 || got.Strategies[0] != strategy.PopularityBased {
		t.Fatalf("strategies = %v", got.Strategies)
	}
	if got.Decisions == nil || len(got.Decisions) != 0 {
		t.Fatalf("without a log decisions must be empty, got %#v", got.Decisions)
	}

	log := &decisionLog{rows: []domain.Decision{{ID: "d-2", SubjectID: "u-1", StrategyName: strategy.CategoryBased}}}
	f.svc.history = log
	got, err = f.svc.Decisions(ctx, "u-1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Decisions) != 1 || got.Decisions[0].ID != "d-2" || log.gotLimit != 5 {
		t.Fatalf("decisions = %+v limit=%d", got.Decisions, log.gotLimit)
	}

	if _, err := f.svc.Decisions(ctx, "", 5); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty subject: %v", err)
	}

	log.err = errors.New("db down")
	if _, err := f.svc.Decisions(ctx, "u-1", 5); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("log failure: %v", err)
	}
}
