package store

import (
	"context"
	"errors"
	"time"

	"github.com/SanketN15/url-shortner/internal/metrics"
	"github.com/SanketN15/url-shortner/internal/shortener"
)

// QueryObserver records the outcome and latency of store operations.
type QueryObserver interface {
	ObserveQuery(operation, status string, d time.Duration)
}

// InstrumentedRepository reports every call of the wrapped Repository to an observer.
type InstrumentedRepository struct {
	store    shortener.Repository
	observer QueryObserver
}

// NewInstrumentedRepository wraps store so that each call is observed.
func NewInstrumentedRepository(store shortener.Repository, observer QueryObserver) *InstrumentedRepository {
	return &InstrumentedRepository{store: store, observer: observer}
}

func (r *InstrumentedRepository) Insert(ctx context.Context, link *shortener.ShortLink) error {
	start := time.Now()
	err := r.store.Insert(ctx, link)
	r.observer.ObserveQuery("insert", status(err), time.Since(start))

	return err
}

func (r *InstrumentedRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	start := time.Now()
	link, err := r.store.GetByCode(ctx, code)
	r.observer.ObserveQuery("get_by_code", status(err), time.Since(start))

	return link, err
}

func status(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, shortener.ErrCodeConflict):
		return metrics.StatusConflict
	case errors.Is(err, shortener.ErrNotFound):
		return metrics.StatusNotFound
	default:
		return metrics.StatusError
	}
}

// Compile-time check.
var _ shortener.Repository = (*InstrumentedRepository)(nil)
