package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
)

// Storage implements kvstore.Store on top of a go-redis client.
type Storage struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ kvstore.Store = (*Storage)(nil)

// StorageOption configures Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key as prefix + ":" + key.
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) {
		if prefix != "" {
			s.prefix = prefix + ":"
		}
	}
}

// WithTTL sets the expiry applied on every Set. Zero keeps keys forever.
func WithTTL(ttl time.Duration) StorageOption {
	return func(s *Storage) { s.ttl = ttl }
}

// NewStorage wraps client. The caller keeps ownership until Close.
func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.db.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", kvstore.ErrNotFound
	}
	return v, err
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.db.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Take reads and deletes key with a single GETDEL (Redis 6.2+).
func (s *Storage) Take(ctx context.Context, key string) (string, error) {
	v, err := s.db.GetDel(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", kvstore.ErrNotFound
	}
	return v, err
}

// Close terminates the underlying client.
func (s *Storage) Close() error {
	return s.db.Close()
}
