package store

import (
	"context"

	"github.com/SanketN15/url-shortner/internal/analytics"
	"go.uber.org/zap"
)

// Log is an implementation of analytics.Store that only logs events.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging analytics store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	l.logger.Info("link created",
		zap.Int64("id", event.ID),
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("clientIp", event.ClientIP),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (l *Log) SaveLinkVisited(_ context.Context, event *analytics.LinkVisitedEvent) error {
	l.logger.Info("link visited",
		zap.String("code", event.Code),
		zap.String("referrer", event.Referrer),
		zap.String("clientIp", event.ClientIP),
		zap.Time("visitedAt", event.VisitedAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Log)(nil)
