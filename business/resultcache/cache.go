// Package resultcache is a read-through JSON cache in front of a key/value
// backend. Backend failures never reach callers: a failed read is a miss and
// a failed write is dropped, both logged.
package resultcache

import (
	"context"
	"strconv"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/pkg/logger"

	"github.com/goccy/go-json"
)

const (
	DefaultTTL         = 3600 * time.Second
	RecommendationsTTL = 1800 * time.Second

	defaultOpTimeout = 500 * time.Millisecond
)

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

func RecommendationsKey(subjectID string) string { return "recommendations:" + subjectID }
func ProductKey(id uint64) string { return "product:" + strconv.FormatUint(id, 10) }
func UserKey(id string) string { return "user:" + id }

type Cache struct {
	backend   Backend
	opTimeout time.Duration
}

// New wraps backend. A nil backend yields a cache that always misses.
func New(backend Backend, opTimeout time.Duration) *Cache {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Cache{backend: backend, opTimeout: opTimeout}
}

// Get decodes the cached value for key into dst and reports whether it did.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.backend == nil {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, ok, err := c.backend.Get(opCtx, key)
	if err != nil {
		CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		logger.Warn("cache_get_failed", "trace_id", bandit.TraceIDFromContext(ctx), "key", key, "error", err)
		return false
	}
	if !ok {
		CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		logger.Warn("cache_decode_failed", "trace_id", bandit.TraceIDFromContext(ctx), "key", key, "error", err)
		return false
	}

	CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	return true
}

// Set stores value under key. A non-positive ttl means DefaultTTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.backend == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		logger.Warn("cache_encode_failed", "trace_id", bandit.TraceIDFromContext(ctx), "key", key, "error", err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.backend.Set(opCtx, key, raw, ttl); err != nil {
		CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		logger.Warn("cache_set_failed", "trace_id", bandit.TraceIDFromContext(ctx), "key", key, "error", err)
		return
	}
	CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
}

func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.backend == nil {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.backend.Del(opCtx, key); err != nil {
		CacheOperationsTotal.WithLabelValues("del", "error").Inc()
		logger.Warn("cache_invalidate_failed", "trace_id", bandit.TraceIDFromContext(ctx), "key", key, "error", err)
		return
	}
	CacheOperationsTotal.WithLabelValues("del", "ok").Inc()
}
