package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepository is the Redis result-cache backend.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

// NewCacheRepository namespaces every key with prefix (may be empty).
func NewCacheRepository(client *redis.Client, prefix string) *CacheRepository {
	return &CacheRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *CacheRepository) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return val, true, nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s in Redis: %w", key, err)
	}
	return nil
}

func (r *CacheRepository) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}
