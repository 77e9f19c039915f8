package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/SanketN15/url-shortner/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Insert(t *testing.T) {
	t.Run("assigns increasing ids", func(t *testing.T) {
		s := store.NewMemoryStore()
		first := &shortener.ShortLink{ShortCode: "abc123", OriginalURL: "https://example.com"}
		second := &shortener.ShortLink{ShortCode: "def456", OriginalURL: "https://example.org"}

		require.NoError(t, s.Insert(context.Background(), first))
		require.NoError(t, s.Insert(context.Background(), second))

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
	})

	t.Run("rejects duplicate code and keeps first url", func(t *testing.T) {
		s := store.NewMemoryStore()
		require.NoError(t, s.Insert(context.Background(),
			&shortener.ShortLink{ShortCode: "abc123", OriginalURL: "https://old.com"}))

		err := s.Insert(context.Background(),
			&shortener.ShortLink{ShortCode: "abc123", OriginalURL: "https://new.com"})
		require.ErrorIs(t, err, shortener.ErrCodeConflict)

		link, err := s.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "https://old.com", link.OriginalURL)
	})

	t.Run("ids are not reused after conflicts", func(t *testing.T) {
		s := store.NewMemoryStore()
		require.NoError(t, s.Insert(context.Background(), &shortener.ShortLink{ShortCode: "abc123"}))
		_ = s.Insert(context.Background(), &shortener.ShortLink{ShortCode: "abc123"})

		next := &shortener.ShortLink{ShortCode: "zzz999"}
		require.NoError(t, s.Insert(context.Background(), next))

		assert.Equal(t, int64(2), next.ID)
	})

	t.Run("concurrent inserts get unique ids", func(t *testing.T) {
		s := store.NewMemoryStore()
		gen, err := shortener.NewCodeGenerator(12)
		require.NoError(t, err)

		var wg sync.WaitGroup

		ids := make([]int64, 50)
		for i := range ids {
			i := i
			wg.Add(1)

			go func() {
				defer wg.Done()

				link := &shortener.ShortLink{ShortCode: shortener.Code(gen())}
				if err := s.Insert(context.Background(), link); err == nil {
					ids[i] = link.ID
				}
			}()
		}

		wg.Wait()

		seen := make(map[int64]bool)
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	})
}

func TestMemoryStore_GetByCode(t *testing.T) {
	t.Run("returns link when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), &shortener.ShortLink{ShortCode: "abc123", OriginalURL: "https://example.com"})

		link, err := s.GetByCode(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.OriginalURL)
		assert.Equal(t, shortener.Code("abc123"), link.ShortCode)
	})

	t.Run("returns ErrNotFound when code does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		link, err := s.GetByCode(context.Background(), "notfound")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returned link is a copy", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), &shortener.ShortLink{ShortCode: "abc123", OriginalURL: "https://example.com"})

		link, _ := s.GetByCode(context.Background(), "abc123")
		link.OriginalURL = "https://mutated.com"

		again, _ := s.GetByCode(context.Background(), "abc123")
		assert.Equal(t, "https://example.com", again.OriginalURL)
	})
}
