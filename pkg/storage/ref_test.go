package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/pkg/adapters/memory"
	"github.com/yurixander/minimal/pkg/storage"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func TestRef_FallbackAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ref := storage.NewRef(store, "gpt", "context", []message{})

	got, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, ref.Set(ctx, []message{{Role: "user", Content: "hi"}}))

	got, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []message{{Role: "user", Content: "hi"}}, got)

	require.NoError(t, ref.Reset(ctx))
	got, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRef_WeakTyping(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "counters", "runs", json.RawMessage(`"7"`)))

	got, err := storage.NewRef(store, "counters", "runs", 0).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestRef_Transform(t *testing.T) {
	ctx := context.Background()
	ref := storage.NewRef(memory.NewStore(), "counters", "runs", 0)

	for i := 0; i < 3; i++ {
		_, err := ref.Transform(ctx, func(n int) int { return n + 1 })
		require.NoError(t, err)
	}

	got, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
