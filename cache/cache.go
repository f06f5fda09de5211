// Package cache stores final summaries in Redis, keyed by model,
// generation parameters and cleaned input.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"summarizer-worker/config"
)

// RedisCache implements the summary cache port over a Redis instance
type RedisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(redisConfig *config.RedisConfig, cacheConfig *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	namespace := cacheConfig.Namespace
	if namespace == "" {
		namespace = "summary"
	}

	return &RedisCache{
		client:    client,
		namespace: namespace,
	}, nil
}

// Get returns the cached summary for key, reporting whether it existed
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	summary, err := c.client.Get(ctx, c.namespacedKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached summary: %w", err)
	}
	return summary, true, nil
}

// Set stores a summary under key for ttl. A non-positive ttl stores
// the entry without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, summary string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.namespacedKey(key), summary, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Delete removes a cached summary
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.namespacedKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached summary: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) namespacedKey(key string) string {
	return fmt.Sprintf("%s:%s", c.namespace, key)
}
