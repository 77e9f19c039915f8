package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS urls (
		id           BIGSERIAL PRIMARY KEY,
		original_url TEXT NOT NULL,
		short_url    TEXT NOT NULL UNIQUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store. The store owns
// the pool and closes it on Shutdown.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the urls table if it does not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO urls (original_url, short_url, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (short_url) DO NOTHING
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		link.OriginalURL,
		string(link.ShortCode),
		link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		// No row comes back when the conflict clause swallowed the insert.
		if errors.Is(err, pgx.ErrNoRows) {
			return shortener.ErrCodeConflict
		}

		return fmt.Errorf("store: insert %q: %w", link.ShortCode, err)
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := `
		SELECT id, original_url, short_url, created_at
		FROM urls
		WHERE short_url = $1
		ORDER BY id
		LIMIT 1
	`

	var link shortener.ShortLink

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("store: get %q: %w", code, err)
	}

	return &link, nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
