package memory

import (
	"context"
	"sync"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration int64
}

// Cache is a process-local TTL backend for the result cache.
type Cache struct {
	items   map[string]cacheItem
	mu      sync.RWMutex
	maxSize int
	now     func() time.Time

	// Metrics
	hitsMu sync.RWMutex
	hits   int64
	misses int64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache starts a janitor that purges expired entries every interval.
// maxSize <= 0 means unbounded.
func NewCache(maxSize int, interval time.Duration) *Cache {
	return newCache(maxSize, interval, time.Now)
}

func newCache(maxSize int, interval time.Duration, now func() time.Time) *Cache {
	c := &Cache{
		items:   make(map[string]cacheItem),
		maxSize: maxSize,
		now:     now,
		stop:    make(chan struct{}),
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go c.cleanup(interval)

	return c
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || c.now().UnixNano() > item.expiration {
		c.incrementMisses()
		return nil, false, nil
	}

	c.incrementHits()
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictLocked()
	}

	c.items[key] = cacheItem{
		value:      stored,
		expiration: c.now().Add(ttl).UnixNano(),
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) HitRate() float64 {
	c.hitsMu.RLock()
	defer c.hitsMu.RUnlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0.0
	}
	return float64(c.hits) / float64(total)
}

// Close stops the janitor. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictLocked drops an expired entry if there is one, otherwise an arbitrary one.
func (c *Cache) evictLocked() {
	now := c.now().UnixNano()
	victim := ""
	for k, item := range c.items {
		if now > item.expiration {
			delete(c.items, k)
			return
		}
		if victim == "" {
			victim = k
		}
	}
	delete(c.items, victim)
}

func (c *Cache) incrementHits() {
	c.hitsMu.Lock()
	defer c.hitsMu.Unlock()
	c.hits++
}

func (c *Cache) incrementMisses() {
	c.hitsMu.Lock()
	defer c.hitsMu.Unlock()
	c.misses++
}

func (c *Cache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now().UnixNano()
	for key, item := range c.items {
		if now > item.expiration {
			delete(c.items, key)
		}
	}
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.stop:
			return
		}
	}
}
