package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanketN15/url-shortner/internal/analytics"
	"github.com/redis/go-redis/v9"
)

// RedisCounters is an analytics.Store keeping per-code visit counts and the
// last visit time in Redis hashes.
type RedisCounters struct {
	client    *redis.Client
	visitsKey string
	lastKey   string
	totalKey  string
}

// NewRedisCounters creates a Redis-backed analytics store.
func NewRedisCounters(client *redis.Client) *RedisCounters {
	return &RedisCounters{
		client:    client,
		visitsKey: "stats:visits",
		lastKey:   "stats:last_visit",
		totalKey:  "stats:links_created",
	}
}

func (r *RedisCounters) SaveLinkCreated(ctx context.Context, _ *analytics.LinkCreatedEvent) error {
	if err := r.client.Incr(ctx, r.totalKey).Err(); err != nil {
		return fmt.Errorf("analytics: count created link: %w", err)
	}

	return nil
}

func (r *RedisCounters) SaveLinkVisited(ctx context.Context, event *analytics.LinkVisitedEvent) error {
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, r.visitsKey, event.Code, 1)
	pipe.HSet(ctx, r.lastKey, event.Code, event.VisitedAt.UnixNano())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("analytics: count visit to %q: %w", event.Code, err)
	}

	return nil
}

// Visits returns how many times code was visited.
func (r *RedisCounters) Visits(ctx context.Context, code string) (int64, error) {
	n, err := r.client.HGet(ctx, r.visitsKey, code).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}

	return n, nil
}

// Compile-time check.
var _ analytics.Store = (*RedisCounters)(nil)
