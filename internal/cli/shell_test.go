package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/internal/config"
	"github.com/yurixander/minimal/internal/logging"
	"github.com/yurixander/minimal/pkg/adapters/memory"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "log_level: info\n" +
		"history_file: " + filepath.Join(dir, "history") + "\n" +
		"storage:\n  backend: memory\n" +
		"splash:\n  fetch_headlines: false\n" +
		extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr string
	}{
		{name: "Default Is File", cfg: config.StorageConfig{Path: t.TempDir()}},
		{name: "File", cfg: config.StorageConfig{Backend: "file", Path: t.TempDir()}},
		{name: "Memory", cfg: config.StorageConfig{Backend: "memory"}},
		{name: "Case Insensitive", cfg: config.StorageConfig{Backend: " Memory "}},
		{name: "SQLite", cfg: config.StorageConfig{Backend: "sqlite", Path: t.TempDir()}},
		{
			name: "Redis",
			cfg: config.StorageConfig{Backend: "redis", Redis: config.RedisConfig{
				Addr:   mr.Addr(),
				Prefix: "test:",
			}},
		},
		{name: "Unknown", cfg: config.StorageConfig{Backend: "etcd"}, wantErr: `unknown storage backend "etcd"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := openStore(ctx, tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Set(ctx, "ns", "k", []byte(`"v"`)))
			got, err := store.Get(ctx, "ns", "k")
			require.NoError(t, err)
			assert.JSONEq(t, `"v"`, string(got))
		})
	}
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := openStore(context.Background(), config.StorageConfig{
		Backend: "redis",
		Redis:   config.RedisConfig{Addr: addr},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach redis")
}

func TestCreateLogger(t *testing.T) {
	t.Run("Printer", func(t *testing.T) {
		var buf bytes.Buffer
		printer := output.NewPrinter(&buf, output.WithLevel(domain.LogLevelWarning))
		logger, closeFn, err := createLogger(printer, "")
		require.NoError(t, err)
		defer closeFn()

		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "minimal.log")
		logger, closeFn, err := createLogger(output.NewPrinter(&bytes.Buffer{}), path)
		require.NoError(t, err)

		logger.Debug("to the file", "error", errors.New("boom"))
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to the file")
		assert.Contains(t, string(data), "err=boom")
	})
}

func TestCreateDebugHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := createDebugHooks(logging.NewWithWriter(&buf, slog.LevelDebug))
	ctx := context.Background()

	hooks.OnCommandStart(ctx, &domain.CommandTrace{Command: "cd", Args: []string{"/tmp"}})
	hooks.OnCommandEnd(ctx, &domain.CommandTrace{Command: "cd", Err: errors.New("boom")})
	hooks.OnPass(ctx, &domain.PassTrace{Event: domain.EventPromptChanged, Iteration: 2})
	hooks.OnFeatureReturn(ctx, &domain.FeatureTrace{Feature: "git", Event: domain.EventWorkingDirectoryChanged, Changed: true})

	out := buf.String()
	assert.Contains(t, out, "Command Start")
	assert.Contains(t, out, "Command End (Error)")
	assert.Contains(t, out, "event=PromptChanged")
	assert.Contains(t, out, "feature=git")
	assert.Nil(t, hooks.OnCapExceeded)
}

func TestRunShell(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	script := strings.Join([]string{
		"cd " + dir,
		"l",
		"cfg log_level",
		"nope",
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	err := RunShell(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, ""),
		NoSplash:   true,
		Stdin:      strings.NewReader(script),
		Stdout:     &out,
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "notes.txt")
	assert.Contains(t, got, "info")
	assert.Contains(t, got, "nope")
	assert.Contains(t, got, output.RootPrompt)
}

func TestRunShell_Splash(t *testing.T) {
	var out bytes.Buffer
	err := RunShell(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, ""),
		Stdin:      strings.NewReader(""),
		Stdout:     &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "is using minimal @")
}

func TestRunShell_InvalidLogLevel(t *testing.T) {
	err := RunShell(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, "engine:\n  max_iterations: 5\n"),
		NoSplash:   true,
		Stdin:      strings.NewReader(""),
		Stdout:     &bytes.Buffer{},
		Flags:      logLevelFlags(t, "loud"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestGraph(t *testing.T) {
	var out bytes.Buffer
	err := Graph(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, ""),
		Stdout:     &out,
	})
	require.NoError(t, err)

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "graph LR"))
	assert.Contains(t, got, "feature_git")
	assert.Contains(t, got, "feature_passthrough")
	assert.Contains(t, got, "class feature_passthrough")
}

func logLevelFlags(t *testing.T, level string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--log-level", level}))
	return flags
}

func TestEncryptStore(t *testing.T) {
	ctx := context.Background()
	plain := memory.NewStore()

	same, err := encryptStore(plain, "")
	require.NoError(t, err)
	assert.Same(t, plain, same)

	_, err = encryptStore(plain, "short")
	assert.ErrorContains(t, err, "invalid storage.encryption_key")

	secure, err := encryptStore(plain, strings.Repeat("ab", 32))
	require.NoError(t, err)
	require.NoError(t, secure.Set(ctx, "ns", "k", []byte(`"secret"`)))

	raw, err := plain.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}
