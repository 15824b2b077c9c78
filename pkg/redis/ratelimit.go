package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter shared by all API replicas
// ⭐ SSOT: 분산 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	now    func() time.Time
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string // client identifier, usually the remote address
	Limit  int
	Window time.Duration
}

// Decision is the verdict for one request
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// windowKey buckets now into the window it falls in
func (r *RateLimiter) windowKey(cfg RateLimitConfig, now time.Time) (string, time.Duration) {
	size := cfg.Window.Milliseconds()
	if size <= 0 {
		size = 1000
	}
	ms := now.UnixMilli()
	idx := ms / size
	resetIn := time.Duration(size-ms%size) * time.Millisecond
	return fmt.Sprintf("%s:ratelimit:%s:%d", r.prefix, cfg.Key, idx), resetIn
}

// Allow counts the request and reports whether it fits in the current window.
// A disabled client allows everything.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (Decision, error) {
	if !r.client.Enabled() {
		return Decision{Allowed: true, Remaining: cfg.Limit}, nil
	}

	key, resetIn := r.windowKey(cfg, r.now())

	var count *redis.IntCmd
	_, err := r.client.Redis().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, resetIn+time.Second)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter failed: %w", err)
	}

	n := int(count.Val())
	d := Decision{Allowed: n <= cfg.Limit, ResetIn: resetIn}
	if d.Allowed {
		d.Remaining = cfg.Limit - n
	}
	return d, nil
}
