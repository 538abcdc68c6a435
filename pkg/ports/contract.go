package ports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/pkg/domain"
)

// RunStoreContract runs a suite of tests to verify that a Store implementation
// adheres to the defined interface contract. The store must start empty.
func RunStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		value := json.RawMessage(`{"role":"user","content":"hi"}`)
		require.NoError(t, store.Set(ctx, "gpt", "context", value))

		got, err := store.Get(ctx, "gpt", "context")
		require.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "counter", "n", json.RawMessage(`1`)))
		require.NoError(t, store.Set(ctx, "counter", "n", json.RawMessage(`2`)))

		got, err := store.Get(ctx, "counter", "n")
		require.NoError(t, err)
		assert.JSONEq(t, `2`, string(got))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "gpt", "missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)

		_, err = store.Get(ctx, "unknown-namespace", "context")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Namespaces Are Isolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "a", "shared", json.RawMessage(`"from a"`)))
		require.NoError(t, store.Set(ctx, "b", "shared", json.RawMessage(`"from b"`)))

		got, err := store.Get(ctx, "a", "shared")
		require.NoError(t, err)
		assert.JSONEq(t, `"from a"`, string(got))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tmp", "k", json.RawMessage(`true`)))
		require.NoError(t, store.Delete(ctx, "tmp", "k"))

		_, err := store.Get(ctx, "tmp", "k")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, store.Delete(ctx, "tmp", "never-set"))
	})

	t.Run("Keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "list", "b", json.RawMessage(`2`)))
		require.NoError(t, store.Set(ctx, "list", "a", json.RawMessage(`1`)))

		keys, err := store.Keys(ctx, "list")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)

		keys, err = store.Keys(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
