package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrNonZeroExit is returned when the process ran but exited unsuccessfully.
var ErrNonZeroExit = errors.New("process exited with non-zero status")

// DefaultWaitDelay is how long a cancelled process may take to release its
// output pipes before Run gives up on it.
const DefaultWaitDelay = 2 * time.Second

// Result is the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external programs without a shell.
type Runner struct {
	env       []string
	waitDelay time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(kv ...string) RunnerOption {
	return func(r *Runner) {
		r.env = append(r.env, kv...)
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args in dir and captures both output streams.
// Arguments are passed verbatim; nothing is interpreted by a shell.
// A non-zero exit returns the captured Result together with an error
// wrapping ErrNonZeroExit.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = r.waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return result, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return result, fmt.Errorf("%s: %w (%d)", name, ErrNonZeroExit, result.ExitCode)
	}
	return result, fmt.Errorf("failed to run %s: %w", name, err)
}
