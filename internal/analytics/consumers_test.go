package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SanketN15/url-shortner/internal/analytics"
	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingStore struct {
	mu      sync.Mutex
	created []analytics.LinkCreatedEvent
	visited []analytics.LinkVisitedEvent
	done    chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{done: make(chan struct{}, 10)}
}

func (s *recordingStore) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	s.mu.Lock()
	s.created = append(s.created, *event)
	s.mu.Unlock()
	s.done <- struct{}{}

	return nil
}

func (s *recordingStore) SaveLinkVisited(_ context.Context, event *analytics.LinkVisitedEvent) error {
	s.mu.Lock()
	s.visited = append(s.visited, *event)
	s.mu.Unlock()
	s.done <- struct{}{}

	return nil
}

func (s *recordingStore) wait(t *testing.T, n int) {
	t.Helper()

	for range make([]struct{}, n) {
		select {
		case <-s.done:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestNewConsumers(t *testing.T) {
	t.Run("routes each topic to its store method", func(t *testing.T) {
		pubSub := messaging.NewInMemoryPubSub(messaging.NewZapLogger(zap.NewNop()))
		recorder := newRecordingStore()

		group := messaging.NewConsumerGroup(pubSub, zap.NewNop())
		group.Add(analytics.NewConsumers(pubSub, recorder, zap.NewNop())...)
		require.NoError(t, group.Start(context.Background()))

		publishCreated := messaging.NewPublishFunc[analytics.LinkCreatedEvent](pubSub, analytics.TopicLinkCreated)
		publishVisited := messaging.NewPublishFunc[analytics.LinkVisitedEvent](pubSub, analytics.TopicLinkVisited)

		require.NoError(t, publishCreated(context.Background(), &analytics.LinkCreatedEvent{ID: 1, Code: "abc123"}))
		require.NoError(t, publishVisited(context.Background(), &analytics.LinkVisitedEvent{Code: "abc123", Referrer: "https://ref.example"}))

		recorder.wait(t, 2)
		require.NoError(t, group.Shutdown())

		recorder.mu.Lock()
		defer recorder.mu.Unlock()

		require.Len(t, recorder.created, 1)
		require.Len(t, recorder.visited, 1)
		assert.Equal(t, int64(1), recorder.created[0].ID)
		assert.Equal(t, "https://ref.example", recorder.visited[0].Referrer)
	})

	t.Run("returns one consumer per topic", func(t *testing.T) {
		consumers := analytics.NewConsumers(messaging.NewInMemoryPubSub(messaging.NewZapLogger(zap.NewNop())), newRecordingStore(), zap.NewNop())

		assert.Len(t, consumers, 2)
	})
}
