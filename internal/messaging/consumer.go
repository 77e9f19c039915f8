package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Outcomes reported to an EventObserver.
const (
	OutcomeHandled   = "handled"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
	OutcomeSkipped   = "skipped"
)

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// EventObserver is told how each received message was dealt with.
type EventObserver interface {
	ObserveEvent(topic, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveEvent(string, string) {}

// Consumer decodes JSON events from one topic and passes them to a typed handler.
//
// A handler error nacks the message so the transport redelivers it. Payloads
// that cannot be decoded, and messages tagged with another event type, are
// acked and dropped since no redelivery would change them.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	observer   EventObserver
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	observer EventObserver
}

// WithEventObserver reports every message outcome to observer.
func WithEventObserver(observer EventObserver) ConsumerOption {
	return func(c *consumerConfig) {
		c.observer = observer
	}
}

// NewConsumer creates a consumer of topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	cfg := consumerConfig{observer: noopObserver{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		observer:   cfg.observer,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until Shutdown.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		c.cancel = nil

		return err
	}

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			outcome := c.process(ctx, msg)
			c.observer.ObserveEvent(c.topic, outcome)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) string {
	log := c.logger.With(zap.String("message_id", msg.UUID))

	if eventType := msg.Metadata.Get(MetadataEventType); eventType != "" && eventType != c.topic {
		log.Warn("skipping event of another type", zap.String("event_type", eventType))
		msg.Ack()

		return OutcomeSkipped
	}

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("dropping malformed event", zap.Error(err))
		msg.Ack()

		return OutcomeMalformed
	}

	if err := c.handler(ctx, &event); err != nil {
		log.Error("failed to handle event", zap.Error(err))
		msg.Nack()

		return OutcomeFailed
	}

	msg.Ack()
	log.Debug("processed event")

	return OutcomeHandled
}

// Shutdown stops the consumer and waits for the message in flight, if any.
// It is a no-op if the consumer was never started.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
