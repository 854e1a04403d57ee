// Package ratelimit throttles failed logins with fixed windows kept in Redis.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brgy-records/apiserver/config"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "brgy:login:"

// Limiter counts failed attempts per key.
type Limiter interface {
	// Allow reports whether key still has attempts left in the current window.
	Allow(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset forgets every attempt for key.
	Reset(ctx context.Context, key string) error
	Close() error
}

// Open connects to Redis when cfg.Addr is set and returns a no-op limiter
// otherwise.
func Open(ctx context.Context, cfg config.RedisConfig, maxAttempts int, window time.Duration) (Limiter, error) {
	if strings.TrimSpace(cfg.Addr) == "" || maxAttempts < 1 {
		return Noop{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisLimiter(client, maxAttempts, window), nil
}

// LoginKey identifies a login source by username and client address.
func LoginKey(username, remoteAddr string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + remoteAddr
}

type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, keyPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, err
	}
	return count < l.maxAttempts, nil
}

// Fail increments the counter and starts the window on the first failure.
func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, keyPrefix+key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, keyPrefix+key, l.window).Err()
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, keyPrefix+key).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

// Noop never throttles.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }
func (Noop) Fail(context.Context, string) error          { return nil }
func (Noop) Reset(context.Context, string) error         { return nil }
func (Noop) Close() error                                { return nil }
