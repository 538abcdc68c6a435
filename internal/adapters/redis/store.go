package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/yurixander/minimal/pkg/domain"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "minimal:kv:"

// Store implements ports.Store using one Redis hash per namespace.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of a namespace, refreshed on every write.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for namespaces.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(namespace string) string {
	return s.prefix + namespace
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// Get retrieves namespace/key.
func (s *Store) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	val, err := s.client.HGet(ctx, s.key(namespace), key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return json.RawMessage(val), nil
}

// Set stores value and refreshes the namespace TTL in one round trip.
func (s *Store) Set(ctx context.Context, namespace, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON for %s/%s", namespace, key)
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key(namespace), key, []byte(value))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(namespace), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes namespace/key.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.HDel(ctx, s.key(namespace), key).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Keys lists the fields of the namespace hash, sorted.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.key(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
