package process

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunner_Run(t *testing.T) {
	requireSh(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(WithEnv("MINIMAL_TEST_VALUE=42"))

	t.Run("Captures Streams In Dir", func(t *testing.T) {
		result, err := runner.Run(context.Background(), dir, "sh", "-c", `pwd; echo "$MINIMAL_TEST_VALUE"; echo oops >&2`)
		require.NoError(t, err)

		assert.Contains(t, result.Stdout, "42")
		assert.Contains(t, result.Stdout, dir)
		assert.Equal(t, "oops\n", result.Stderr)
		assert.Zero(t, result.ExitCode)
	})

	t.Run("Non-Zero Exit", func(t *testing.T) {
		result, err := runner.Run(context.Background(), dir, "sh", "-c", "echo partial; exit 3")
		assert.ErrorIs(t, err, ErrNonZeroExit)
		assert.Equal(t, 3, result.ExitCode)
		assert.Equal(t, "partial\n", result.Stdout)
	})

	t.Run("Missing Binary", func(t *testing.T) {
		_, err := runner.Run(context.Background(), dir, "definitely-not-a-real-binary-xyz")
		assert.ErrorContains(t, err, "failed to run")
		assert.NotErrorIs(t, err, ErrNonZeroExit)
	})

	t.Run("Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := runner.Run(ctx, dir, "sh", "-c", "sleep 5")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}
