package ratelimit

import (
	"context"
	"time"
)

// Store keeps per-key request timestamps for sliding window limits.
type Store interface {
	// Record records a request and returns the count of requests in the current window.
	// It prunes entries older than window.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
