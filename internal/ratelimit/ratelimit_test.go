package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brgy-records/apiserver/config"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginKey(t *testing.T) {
	assert.Equal(t, "admin|10.0.0.1", LoginKey("  Admin ", "10.0.0.1"))
}

func TestOpenWithoutAddressIsNoop(t *testing.T) {
	limiter, err := Open(context.Background(), config.RedisConfig{}, 5, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, limiter)

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Fail(context.Background(), "k"))
	}
	allowed, err := limiter.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	limiter := NewRedisLimiter(client, 2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })

	key := LoginKey("throttle-test", "127.0.0.1")
	require.NoError(t, limiter.Reset(ctx, key))

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, limiter.Fail(ctx, key))
	require.NoError(t, limiter.Fail(ctx, key))
	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl, err := client.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, limiter.Reset(ctx, key))
	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed)
}
