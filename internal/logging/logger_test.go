package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Info("probe failed", "error", errors.New("exit status 128"))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `err="exit status 128"`)
	assert.NotContains(t, out, "hidden")
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Enabled(context.Background(), slog.LevelError))
}
