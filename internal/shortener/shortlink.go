package shortener

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no link exists for a short code.
	ErrNotFound = errors.New("short url not found")
	// ErrCodeConflict is returned by a Repository when the short code is already taken.
	ErrCodeConflict = errors.New("short code already exists")
	// ErrAttemptsExhausted is returned when every generated code collided.
	ErrAttemptsExhausted = errors.New("no free short code after retries")
	// ErrInvalidURL is returned when a URL policy rejects a submission.
	ErrInvalidURL = errors.New("invalid url")
)

// Code represents a short URL code.
type Code string

// ShortLink maps a generated short code to the URL it was created for.
type ShortLink struct {
	ID          int64
	OriginalURL string
	ShortCode   Code
	CreatedAt   time.Time
}

// Repository persists short links.
type Repository interface {
	// Insert stores the link and assigns its ID.
	// Returns ErrCodeConflict if the short code is already in use.
	Insert(ctx context.Context, link *ShortLink) error
	// GetByCode returns the link for an exact, case-sensitive code match.
	// Returns ErrNotFound if no such link exists.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)
}
