package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// channelSubscriber hands out one buffered channel for every topic.
type channelSubscriber struct {
	msgs         chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newChannelSubscriber() *channelSubscriber {
	return &channelSubscriber{msgs: make(chan *message.Message, 10)}
}

func (s *channelSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	return s.msgs, nil
}

func (s *channelSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.msgs)
	}

	return nil
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObserveEvent(topic, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes = append(r.outcomes, topic+":"+outcome)
}

func (r *outcomeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.outcomes...)
}

func eventMessage(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

// settle waits until msg is acked or nacked and reports which.
func settle(t *testing.T, msg *message.Message) string {
	t.Helper()

	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack or nack")

		return ""
	}
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to its topic", func(t *testing.T) {
		consumer := messaging.NewConsumer(
			newChannelSubscriber(),
			"link.created",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "link.created", consumer.Topic())
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &channelSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"link.created",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("shutdown without start is a no-op", func(t *testing.T) {
		consumer := messaging.NewConsumer(
			newChannelSubscriber(),
			"link.created",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("stops when subscriber closes", func(t *testing.T) {
		sub := newChannelSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"link.created",
			func(context.Context, *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, sub.Close())
		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_Messages(t *testing.T) {
	handlerErr := errors.New("handler error")

	tests := []struct {
		name       string
		message    func(t *testing.T) *message.Message
		handlerErr error
		settled    string
		outcome    string
	}{
		{
			name: "acks handled event",
			message: func(t *testing.T) *message.Message {
				return eventMessage(t, testEvent{ID: "123", Name: "test"})
			},
			settled: "ack",
			outcome: messaging.OutcomeHandled,
		},
		{
			name: "nacks when handler fails",
			message: func(t *testing.T) *message.Message {
				return eventMessage(t, testEvent{ID: "123"})
			},
			handlerErr: handlerErr,
			settled:    "nack",
			outcome:    messaging.OutcomeFailed,
		},
		{
			name: "drops malformed payload",
			message: func(*testing.T) *message.Message {
				return message.NewMessage(uuid.NewString(), []byte("invalid json"))
			},
			settled: "ack",
			outcome: messaging.OutcomeMalformed,
		},
		{
			name: "skips event of another type",
			message: func(t *testing.T) *message.Message {
				msg := eventMessage(t, testEvent{ID: "123"})
				msg.Metadata.Set(messaging.MetadataEventType, "link.visited")

				return msg
			},
			settled: "ack",
			outcome: messaging.OutcomeSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newChannelSubscriber()
			observer := &outcomeRecorder{}

			consumer := messaging.NewConsumer(
				sub,
				"link.created",
				func(context.Context, *testEvent) error { return tt.handlerErr },
				zap.NewNop(),
				messaging.WithEventObserver(observer),
			)
			require.NoError(t, consumer.Start(context.Background()))

			msg := tt.message(t)
			sub.msgs <- msg

			assert.Equal(t, tt.settled, settle(t, msg))
			require.NoError(t, consumer.Shutdown())
			assert.Equal(t, []string{"link.created:" + tt.outcome}, observer.all())
		})
	}
}

func TestConsumer_DecodesEvent(t *testing.T) {
	sub := newChannelSubscriber()
	received := make(chan *testEvent, 1)

	consumer := messaging.NewConsumer(
		sub,
		"link.created",
		func(_ context.Context, event *testEvent) error {
			received <- event

			return nil
		},
		zap.NewNop(),
	)
	require.NoError(t, consumer.Start(context.Background()))

	sub.msgs <- eventMessage(t, testEvent{ID: "123", Name: "test"})

	select {
	case event := <-received:
		assert.Equal(t, testEvent{ID: "123", Name: "test"}, *event)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	require.NoError(t, consumer.Shutdown())
}

func TestConsumer_InMemoryRoundTrip(t *testing.T) {
	pubSub := messaging.NewInMemoryPubSub(messaging.NewZapLogger(zap.NewNop()))
	received := make(chan *testEvent, 1)

	consumer := messaging.NewConsumer(
		pubSub,
		"link.created",
		func(_ context.Context, event *testEvent) error {
			received <- event

			return nil
		},
		zap.NewNop(),
	)
	require.NoError(t, consumer.Start(context.Background()))

	publish := messaging.NewPublishFunc[testEvent](pubSub, "link.created")
	require.NoError(t, publish(context.Background(), &testEvent{ID: "42", Name: "round trip"}))

	select {
	case event := <-received:
		assert.Equal(t, "42", event.ID)
		assert.Equal(t, "round trip", event.Name)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	require.NoError(t, consumer.Shutdown())
	require.NoError(t, pubSub.Close())
}
