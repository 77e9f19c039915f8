package store

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many recorded requests pass between sweeps of idle keys.
const sweepEvery = 1024

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Keys whose requests have all left the longest window seen are swept
// periodically so idle clients do not accumulate.
type RateLimitMemoryStore struct {
	mu         sync.Mutex
	requests   map[string][]time.Time
	longest    time.Duration
	sinceSweep int
	now        func() time.Time
}

// MemoryStoreOption configures a RateLimitMemoryStore.
type MemoryStoreOption func(*RateLimitMemoryStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *RateLimitMemoryStore) {
		s.now = now
	}
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore(opts ...MemoryStoreOption) *RateLimitMemoryStore {
	s := &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.longest = max(s.longest, window)

	s.sinceSweep++
	if s.sinceSweep >= sweepEvery {
		s.sweep(now)
	}

	valid := append(prune(s.requests[key], now.Add(-window)), now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// Keys returns the number of clients currently tracked.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	s.sinceSweep = 0
	cutoff := now.Add(-s.longest)

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)
		}
	}
}

// prune drops timestamps at or before cutoff. Timestamps are in order, so the
// expired ones form a prefix.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	first := 0

	for first < len(timestamps) && !timestamps[first].After(cutoff) {
		first++
	}

	return timestamps[first:len(timestamps):len(timestamps)]
}
