package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/internal/adapters/file"
	"github.com/yurixander/minimal/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := file.New(dir)
	require.NoError(t, first.Set(ctx, "gpt", "context", json.RawMessage(`[{"role":"user"}]`)))

	_, err := os.Stat(filepath.Join(dir, "gpt.json"))
	require.NoError(t, err)

	second := file.New(dir)
	got, err := second.Get(ctx, "gpt", "context")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"user"}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileStore_OverwriteNeverHidesNamespace(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	writer := file.New(dir)
	require.NoError(t, writer.Set(ctx, "gpt", "context", json.RawMessage(`0`)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 200; i++ {
			if err := writer.Set(ctx, "gpt", "context", json.RawMessage(strconv.Itoa(i))); err != nil {
				t.Errorf("Set: %v", err)
				return
			}
		}
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		// a fresh store has no cache, so every Get reads the file
		_, err := file.New(dir).Get(ctx, "gpt", "context")
		require.NoError(t, err)
	}

	got, err := file.New(dir).Get(ctx, "gpt", "context")
	require.NoError(t, err)
	assert.JSONEq(t, `200`, string(got))
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	err := store.Set(context.Background(), "../escape", "k", json.RawMessage(`1`))
	assert.ErrorContains(t, err, "invalid namespace")
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	_, err := file.New(dir).Get(context.Background(), "broken", "k")
	assert.ErrorContains(t, err, "failed to unmarshal namespace")
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".minimal", "storage"), file.New("").BasePath)
}
