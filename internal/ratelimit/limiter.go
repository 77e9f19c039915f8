package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitConfig allows at most Max requests per client within Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed bool
	// Count and Limit describe the limit that was exceeded; zero when allowed.
	Count int64
	Limit LimitConfig
}

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow records a request from the given key and reports whether it may proceed.
	Allow(ctx context.Context, key string) (Decision, error)
}

// SlidingWindowLimiter enforces one or more sliding windows per client key.
type SlidingWindowLimiter struct {
	store  Store
	name   string
	limits []LimitConfig
}

// NewSlidingWindowLimiter creates a limiter whose counters are namespaced by name,
// so several limiters can share one store.
func NewSlidingWindowLimiter(store Store, name string, limits ...LimitConfig) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		name:   name,
		limits: limits,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	for _, limit := range l.limits {
		count, err := l.store.Record(ctx, l.buildKey(key, limit), limit.Window)
		if err != nil {
			return Decision{}, err
		}

		if count > limit.Max {
			return Decision{Count: count, Limit: limit}, nil
		}
	}

	return Decision{Allowed: true}, nil
}

// buildKey creates a unique key for the client, limiter and window combination.
func (l *SlidingWindowLimiter) buildKey(clientKey string, limit LimitConfig) string {
	return fmt.Sprintf("%s:%s:%d", l.name, clientKey, limit.Window.Milliseconds())
}

// Unlimited is a Limiter that allows every request.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
