package ports

import (
	"context"
	"encoding/json"
)

// Store is a namespaced key-value store for JSON documents. Commands use it
// to persist data between sessions (e.g. chat history).
type Store interface {
	// Get returns the raw value stored under namespace/key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, namespace, key string) (json.RawMessage, error)

	// Set stores value under namespace/key, replacing any previous value.
	Set(ctx context.Context, namespace, key string, value json.RawMessage) error

	// Delete removes namespace/key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// Keys lists the keys of a namespace in ascending order.
	Keys(ctx context.Context, namespace string) ([]string, error)

	// Close releases connections or handles held by the store.
	Close() error
}
