package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// insertScript writes the link hash only if the code is free and hands out the
// next id from the sequence, so ids are never burnt on conflicts.
var insertScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
local id = redis.call("INCR", KEYS[2])
redis.call("HSET", KEYS[1], "id", id, "original_url", ARGV[1], "short_url", ARGV[2], "created_at", ARGV[3])
return id
`)

// RedisStore is a Redis implementation of shortener.Repository. Each link is
// a hash under prefix+code.
type RedisStore struct {
	client *redis.Client
	prefix string
	seqKey string
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "link:",
		seqKey: "links:seq",
	}
}

func (r *RedisStore) Insert(ctx context.Context, link *shortener.ShortLink) error {
	id, err := insertScript.Run(ctx, r.client,
		[]string{r.prefix + string(link.ShortCode), r.seqKey},
		link.OriginalURL,
		string(link.ShortCode),
		link.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return fmt.Errorf("store: insert %q: %w", link.ShortCode, err)
	}

	if id == 0 {
		return shortener.ErrCodeConflict
	}

	link.ID = id

	return nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", code, err)
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return decodeLink(fields)
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodeLink(link *shortener.ShortLink) map[string]any {
	return map[string]any{
		"id":           link.ID,
		"original_url": link.OriginalURL,
		"short_url":    string(link.ShortCode),
		"created_at":   link.CreatedAt.UnixNano(),
	}
}

func decodeLink(fields map[string]string) (*shortener.ShortLink, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("store: decode id: %w", err)
	}

	link := &shortener.ShortLink{
		ID:          id,
		OriginalURL: fields["original_url"],
		ShortCode:   shortener.Code(fields["short_url"]),
	}

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		link.CreatedAt = time.Unix(0, nanos).UTC()
	}

	return link, nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
