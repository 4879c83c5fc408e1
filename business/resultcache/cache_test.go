//go:build !integration

package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"recoEngine/domain"
	"recoEngine/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type failingBackend struct {
	err     error
	gotTTL  time.Duration
	payload []byte
}

func (f *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	if f.payload != nil {
		return f.payload, true, nil
	}
	return nil, false, f.err
}

func (f *failingBackend) Set(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
	f.gotTTL = ttl
	return f.err
}

func (f *failingBackend) Del(context.Context, string) error { return f.err }

func TestKeys(t *testing.T) {
	if got := RecommendationsKey("u-1"); got != "recommendations:u-1" {
		t.Errorf("RecommendationsKey = %s", got)
	}
	if got := ProductKey(42); got != "product:42" {
		t.Errorf("ProductKey = %s", got)
	}
	if got := UserKey("u-1"); got != "user:u-1" {
		t.Errorf("UserKey = %s", got)
	}
	if DefaultTTL != time.Hour || RecommendationsTTL != 30*time.Minute {
		t.Errorf("ttls = %v, %v", DefaultTTL, RecommendationsTTL)
	}
}

func TestCache_RoundTripThroughMemoryBackend(t *testing.T) {
	backend := memory.NewCache(100, time.Minute)
	t.Cleanup(backend.Close)
	c := New(backend, time.Second)
	ctx := context.Background()

	want := domain.RecommendationResult{
		SubjectID: "u-1",
		Strategy:  "popularity_based",
		Mode:      domain.ModeExploit,
		Items: []domain.ScoredProduct{
			{Product: domain.Product{ID: 1, Name: "Yoga Mat"}, Score: 0.85},
		},
	}

	var got domain.RecommendationResult
	if c.Get(ctx, RecommendationsKey("u-1"), &got) {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(ctx, RecommendationsKey("u-1"), want, RecommendationsTTL)
	if !c.Get(ctx, RecommendationsKey("u-1"), &got) {
		t.Fatal("expected hit")
	}
	if got.Strategy != want.Strategy || len(got.Items) != 1 || got.Items[0].Score != 0.85 || got.Items[0].Name != "Yoga Mat" {
		t.Fatalf("got %+v", got)
	}

	c.Invalidate(ctx, RecommendationsKey("u-1"))
	if c.Get(ctx, RecommendationsKey("u-1"), &got) {
		t.Fatal("hit after invalidate")
	}
}

func TestCache_BackendFailuresAreSwallowed(t *testing.T) {
	backend := &failingBackend{err: errors.New("connection reset")}
	c := New(backend, time.Second)
	ctx := context.Background()

	before := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "error"))

	var dst map[string]any
	if c.Get(ctx, "k", &dst) {
		t.Fatal("failed read must be a miss")
	}
	c.Set(ctx, "k", map[string]int{"a": 1}, 0)
	c.Invalidate(ctx, "k")

	if backend.gotTTL != DefaultTTL {
		t.Errorf("ttl = %v, want DefaultTTL for non-positive input", backend.gotTTL)
	}
	if d := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "error")) - before; d != 1 {
		t.Errorf("get error counter delta = %v", d)
	}
}

func TestCache_CorruptPayloadIsMiss(t *testing.T) {
	c := New(&failingBackend{payload: []byte("{not json")}, time.Second)
	var dst domain.Product
	if c.Get(context.Background(), "product:1", &dst) {
		t.Fatal("corrupt payload must be a miss")
	}
}

func TestCache_NilIsDisabled(t *testing.T) {
	var c *Cache
	var dst string
	if c.Get(context.Background(), "k", &dst) {
		t.Fatal("nil cache hit")
	}
	c.Set(context.Background(), "k", "v", 0)
	c.Invalidate(context.Background(), "k")

	disabled := New(nil, 0)
	if disabled.Get(context.Background(), "k", &dst) {
		t.Fatal("backend-less cache hit")
	}
}
