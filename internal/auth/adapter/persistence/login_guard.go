// Package persistence holds auth storage adapters that are not the primary
// relational store.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLoginGuard counts failed login attempts per email+address in Redis so
// the limit holds across instances. The counter window starts at the first
// failure and the key expires on its own.
type RedisLoginGuard struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRedisLoginGuard(client *redis.Client, maxAttempts int, window time.Duration) *RedisLoginGuard {
	return &RedisLoginGuard{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow reports whether another login attempt is permitted for key.
func (g *RedisLoginGuard) Allow(ctx context.Context, key string) (bool, error) {
	count, err := g.client.Get(ctx, g.redisKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading login attempt counter: %w", err)
	}
	return count < g.maxAttempts, nil
}

// RecordFailure bumps the counter, starting the window on the first failure.
func (g *RedisLoginGuard) RecordFailure(ctx context.Context, key string) error {
	rk := g.redisKey(key)
	count, err := g.client.Incr(ctx, rk).Result()
	if err != nil {
		return fmt.Errorf("incrementing login attempt counter: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, rk, g.window).Err(); err != nil {
			return fmt.Errorf("setting login attempt window: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (g *RedisLoginGuard) Reset(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("resetting login attempt counter: %w", err)
	}
	return nil
}

func (g *RedisLoginGuard) redisKey(key string) string {
	return "login_attempts:" + strings.ToLower(key)
}

// NoopLoginGuard disables throttling; used when no Redis address is configured.
type NoopLoginGuard struct{}

func (NoopLoginGuard) Allow(ctx context.Context, key string) (bool, error) { return true, nil }
func (NoopLoginGuard) RecordFailure(ctx context.Context, key string) error { return nil }
func (NoopLoginGuard) Reset(ctx context.Context, key string) error         { return nil }
