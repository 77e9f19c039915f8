package shortener

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how many codes Shorten tries before giving up.
const DefaultMaxAttempts = 5

// Service creates short links and resolves them back to their original URLs.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	policy       URLPolicy
	reserved     map[Code]struct{}
	maxAttempts  int
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithURLPolicy sets the validation applied to submitted URLs.
func WithURLPolicy(policy URLPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithReservedCodes prevents codes that would shadow other routes from being issued.
func WithReservedCodes(codes ...string) Option {
	return func(s *Service) {
		for _, c := range codes {
			s.reserved[Code(c)] = struct{}{}
		}
	}
}

// WithMaxAttempts sets how many codes are tried when inserts conflict.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used to report code collisions.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service backed by store. By default every URL is accepted.
func NewService(store Repository, generator CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generateCode: generator,
		policy:       AllowAny,
		reserved:     make(map[Code]struct{}),
		maxAttempts:  DefaultMaxAttempts,
		logger:       zap.NewNop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten persists a new link for originalURL under a freshly generated code.
// A code that is reserved or already taken is replaced by a new one, at most
// maxAttempts times in total.
func (s *Service) Shorten(ctx context.Context, originalURL string) (*ShortLink, error) {
	if err := s.policy(originalURL); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := Code(s.generateCode())

		if _, ok := s.reserved[code]; ok {
			s.logger.Debug("generated reserved code, retrying", zap.String("code", string(code)))

			continue
		}

		link := &ShortLink{
			OriginalURL: originalURL,
			ShortCode:   code,
			CreatedAt:   s.now().UTC(),
		}

		err := s.store.Insert(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrCodeConflict) {
			return nil, err
		}

		s.logger.Info("short code collision, generating a new one",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	return nil, ErrAttemptsExhausted
}

// Resolve looks up the link issued under code.
func (s *Service) Resolve(ctx context.Context, code Code) (*ShortLink, error) {
	return s.store.GetByCode(ctx, code)
}
