package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleWindow     = 15 * time.Minute
	defaultMaxAttempts = 10
)

// LoginThrottle limits failed login attempts per username/ip pair, backed by
// Redis. Key format: login_attempts:<username>:<ip>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// If maxAttempts <= 0, defaultMaxAttempts is used.
func NewLoginThrottle(client *redis.Client, maxAttempts int) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts}
}

// Allow reports whether another login attempt is permitted.
func (t *LoginThrottle) Allow(ctx context.Context, username, ip string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(username, ip)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.maxAttempts, nil
}

// RecordFailure counts a failed attempt; the counter expires after the window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username, ip string) error {
	key := t.key(username, ip)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, throttleWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username, ip string) error {
	return t.client.Del(ctx, t.key(username, ip)).Err()
}

func (t *LoginThrottle) key(username, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", username, ip)
}
