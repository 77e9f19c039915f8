package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SanketN15/url-shortner/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestRateLimitMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("counts requests in window", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		for i := range make([]struct{}, 3) {
			count, err := s.Record(ctx, "client1", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, int64(i+1), count)
		}
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(ctx, "client1", time.Minute)
		_, _ = s.Record(ctx, "client1", time.Minute)

		count, err := s.Record(ctx, "client2", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("prunes expired entries", func(t *testing.T) {
		clock := newClock()
		s := store.NewRateLimitMemoryStore(store.WithClock(clock.Now))

		_, _ = s.Record(ctx, "client1", time.Minute)
		clock.Advance(30 * time.Second)
		_, _ = s.Record(ctx, "client1", time.Minute)
		clock.Advance(45 * time.Second)

		count, err := s.Record(ctx, "client1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("entry exactly one window old has expired", func(t *testing.T) {
		clock := newClock()
		s := store.NewRateLimitMemoryStore(store.WithClock(clock.Now))

		_, _ = s.Record(ctx, "client1", time.Minute)
		clock.Advance(time.Minute)

		count, err := s.Record(ctx, "client1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("sweeps idle clients", func(t *testing.T) {
		clock := newClock()
		s := store.NewRateLimitMemoryStore(store.WithClock(clock.Now))

		for i := range make([]struct{}, 100) {
			_, _ = s.Record(ctx, fmt.Sprintf("idle-%d", i), time.Minute)
		}

		clock.Advance(2 * time.Minute)

		for range make([]struct{}, 1024) {
			_, _ = s.Record(ctx, "active", time.Minute)
		}

		assert.Equal(t, 1, s.Keys())
	})
}
