//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/SanketN15/url-shortner/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit()  { o.hits++ }
func (o *countingObserver) CacheMiss() { o.misses++ }

func TestRedisStoreIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	s := store.NewRedisStore(client)

	t.Run("insert and get by code", func(t *testing.T) {
		link := &shortener.ShortLink{
			ShortCode:   "rdTst1",
			OriginalURL: "https://example.com",
			CreatedAt:   time.Now().UTC(),
		}
		defer client.Del(ctx, "link:rdTst1")

		require.NoError(t, s.Insert(ctx, link))
		assert.Positive(t, link.ID)

		got, err := s.GetByCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		defer client.Del(ctx, "link:rdDup1")

		require.NoError(t, s.Insert(ctx, &shortener.ShortLink{ShortCode: "rdDup1", OriginalURL: "https://old.com"}))

		err := s.Insert(ctx, &shortener.ShortLink{ShortCode: "rdDup1", OriginalURL: "https://new.com"})
		require.ErrorIs(t, err, shortener.ErrCodeConflict)

		got, _ := s.GetByCode(ctx, "rdDup1")
		assert.Equal(t, "https://old.com", got.OriginalURL)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		got, err := s.GetByCode(ctx, "rdnone")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		backing := store.NewMemoryStore()
		require.NoError(t, backing.Insert(ctx, &shortener.ShortLink{ShortCode: "chTst1", OriginalURL: "https://example.com"}))
		defer client.Del(ctx, "cache:link:chTst1")

		observer := &countingObserver{}
		cached := store.NewRedisCacheRepository(backing, client, time.Minute, observer, zap.NewNop())

		first, err := cached.GetByCode(ctx, "chTst1")
		require.NoError(t, err)
		second, err := cached.GetByCode(ctx, "chTst1")
		require.NoError(t, err)

		assert.Equal(t, first.OriginalURL, second.OriginalURL)
		assert.Equal(t, 1, observer.misses)
		assert.Equal(t, 1, observer.hits)
	})

	t.Run("miss is not cached", func(t *testing.T) {
		observer := &countingObserver{}
		cached := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute, observer, zap.NewNop())

		_, err := cached.GetByCode(ctx, "chNone")

		require.ErrorIs(t, err, shortener.ErrNotFound)
		assert.Zero(t, client.Exists(ctx, "cache:link:chNone").Val())
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	s := store.NewRateLimitRedisStore(client)
	defer client.Del(ctx, "ratelimit:itest")

	for i := range make([]struct{}, 3) {
		count, err := s.Record(ctx, "itest", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(i+1), count)
	}
}
