package analytics

import (
	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// NewConsumers returns one consumer per analytics topic, each persisting to store.
func NewConsumers(
	subscriber message.Subscriber,
	store Store,
	logger *zap.Logger,
	opts ...messaging.ConsumerOption,
) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger, opts...),
		messaging.NewConsumer(subscriber, TopicLinkVisited, store.SaveLinkVisited, logger, opts...),
	}
}
