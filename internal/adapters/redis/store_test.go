package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/internal/adapters/redis"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	defer store.Close()

	ports.RunStoreContract(t, store)
}

func TestRedisStore_PrefixAndLayout(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gpt", "context", json.RawMessage(`[1,2]`)))

	assert.Equal(t, `[1,2]`, mr.HGet("test:gpt", "context"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"gpt"))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gpt", "context", json.RawMessage(`"x"`)))

	_, err := store.Get(ctx, "gpt", "context")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "gpt", "context")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
