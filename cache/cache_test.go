package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summarizer-worker/config"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()

	redisConfig := &config.RedisConfig{
		Host: "localhost",
		Port: "6379",
		DB:   5, // separate DB for cache tests
	}
	cacheConfig := &config.CacheConfig{
		Enabled:   true,
		TTL:       time.Minute,
		Namespace: "summary_test",
	}

	cache, err := NewRedisCache(redisConfig, cacheConfig)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	cache.client.FlushDB(context.Background())
	return cache
}

func TestCacheSetGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "missing-key")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "key-1", "A cached summary.", time.Minute))

	summary, found, err := cache.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A cached summary.", summary)
}

func TestCacheDelete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key-2", "to be removed", time.Minute))
	require.NoError(t, cache.Delete(ctx, "key-2"))

	_, found, err := cache.Get(ctx, "key-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key-3", "short lived", 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	_, found, err := cache.Get(ctx, "key-3")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheNamespaceIsolation(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "shared-key", "value", time.Minute))

	// raw key without the namespace prefix must not resolve
	raw, err := cache.client.Get(ctx, "shared-key").Result()
	assert.Error(t, err)
	assert.Empty(t, raw)

	namespaced, err := cache.client.Get(ctx, "summary_test:shared-key").Result()
	require.NoError(t, err)
	assert.Equal(t, "value", namespaced)
}

func TestCachePing(t *testing.T) {
	cache := newTestCache(t)
	assert.NoError(t, cache.Ping(context.Background()))
}
