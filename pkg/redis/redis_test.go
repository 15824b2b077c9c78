package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), KeyPrefix)
	cfg := RateLimitConfig{Key: "127.0.0.1", Limit: 5, Window: time.Second}

	d, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, cfg.Limit, d.Remaining)
}

func TestRateLimiter_WindowKey(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), KeyPrefix)
	cfg := RateLimitConfig{Key: "10.0.0.1", Limit: 5, Window: time.Minute}

	start := time.UnixMilli(60_000 * 1000) // window boundary
	key, reset := limiter.windowKey(cfg, start)
	assert.Equal(t, "shield:ratelimit:10.0.0.1:1000", key)
	assert.Equal(t, time.Minute, reset)

	key2, reset2 := limiter.windowKey(cfg, start.Add(45*time.Second))
	assert.Equal(t, key, key2)
	assert.Equal(t, 15*time.Second, reset2)

	key3, _ := limiter.windowKey(cfg, start.Add(time.Minute))
	assert.NotEqual(t, key, key3)
}

func TestRateLimiter_Redis(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}})
	require.NoError(t, err)
	defer client.Close()

	limiter := NewRateLimiter(client, "shield-test")
	cfg := RateLimitConfig{Key: uniqueKey(t), Limit: 2, Window: time.Hour}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
}

func uniqueKey(t *testing.T) string {
	return fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), KeyPrefix)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ResultKey("abc"), map[string]int{"a": 1}, time.Minute))

	var result map[string]int
	found, err := cache.Get(ctx, ResultKey("abc"), &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, ResultKey("abc")))
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	found, err := cache.Get(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "result:sig-1", ResultKey("sig-1"))
}

func TestCache_RoundTrip(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}})
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "shield-test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]float64{"score": 8.1}, time.Minute))
	var got map[string]float64
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 8.1, got["score"])
}
