package store

import (
	"context"
	"time"

	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheObserver is notified about cache lookups.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store    shortener.Repository
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository,
	client *redis.Client,
	ttl time.Duration,
	observer CacheObserver,
	logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:    store,
		client:   client,
		prefix:   "cache:link:",
		ttl:      ttl,
		observer: observer,
		logger:   logger,
	}
}

// Insert stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, link *shortener.ShortLink) error {
	if err := r.store.Insert(ctx, link); err != nil {
		return err
	}

	r.cache(ctx, link)

	return nil
}

// GetByCode retrieves a link by its code, checking the cache first. Cache
// errors degrade to a store read.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err == nil && len(fields) > 0 {
		if link, decodeErr := decodeLink(fields); decodeErr == nil {
			r.observer.CacheHit()

			return link, nil
		}
	}

	if err != nil {
		r.logger.Warn("cache read failed", zap.String("code", string(code)), zap.Error(err))
	}

	r.observer.CacheMiss()

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) cache(ctx context.Context, link *shortener.ShortLink) {
	key := r.prefix + string(link.ShortCode)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, encodeLink(link))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("cache write failed", zap.String("code", string(link.ShortCode)), zap.Error(err))
	}
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
