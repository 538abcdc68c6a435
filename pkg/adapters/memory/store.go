package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/yurixander/minimal/pkg/domain"
)

// Store implements ports.Store in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]json.RawMessage
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]json.RawMessage),
	}
}

// Get retrieves a copy of the value so callers cannot mutate the store.
func (s *Store) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[namespace][key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

// Set validates and stores a copy of value.
func (s *Store) Set(ctx context.Context, namespace, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON for %s/%s", namespace, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]json.RawMessage)
		s.data[namespace] = ns
	}
	ns[key] = slices.Clone(value)
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[namespace], key)
	return nil
}

// Keys returns the keys of a namespace, sorted.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data[namespace]))
	for k := range s.data[namespace] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
