package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

// Shell executes input lines against a State.
type Shell interface {
	Execute(ctx context.Context, state *domain.State, line string) (*domain.Outcome, error)
	Prompt(state *domain.State) string
}

// Runner is the read-eval-print loop.
type Runner struct {
	Reader  LineReader
	Printer *output.Printer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger    *slog.Logger
	SessionID string

	// OnCommit observes every committed State, including the initial one.
	OnCommit        func(*domain.State)
	InterruptSource <-chan struct{}
	Signals         bool
}

// NewRunner creates a Runner. Reader and Printer must be supplied through
// options before Run.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Signals: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	if r.SessionID != "" {
		r.Logger = r.Logger.With("session_id", r.SessionID)
	}
	return r
}

// Run loops until EOF, an interrupt at the prompt, an exit command or ctx
// cancellation, and returns the last committed State.
func (r *Runner) Run(ctx context.Context, shell Shell, initial *domain.State) (*domain.State, error) {
	if r.Reader == nil || r.Printer == nil {
		return initial, errors.New("runner needs a reader and a printer")
	}

	state := initial
	r.commit(state)

	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		r.Reader.SetPrompt(shell.Prompt(state))
		line, err := r.Reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				r.Logger.Debug("session ended", "reason", err)
				return state, nil
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		line, err = SanitizeInput(line)
		if err != nil {
			r.Printer.Error(err.Error())
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return state, nil
		}

		state = r.turn(ctx, shell, state, line)
	}
}

// turn executes one line with interrupts scoped to it.
func (r *Runner) turn(ctx context.Context, shell Shell, state *domain.State, line string) *domain.State {
	signals := newSignalManager(ctx, r.InterruptSource, r.Signals)
	defer signals.Stop()

	outcome, err := shell.Execute(signals.Context(), state, line)
	if err != nil {
		if signals.Interrupted() {
			r.Printer.Warn("interrupted")
			return state
		}
		r.Logger.Debug("command failed", "line", line, "err", err)
		var cmdErr *domain.CommandError
		if errors.As(err, &cmdErr) {
			err = cmdErr.Err
		}
		r.Printer.Error(err.Error())
		return state
	}
	if outcome.Canceled && signals.Interrupted() {
		r.Printer.Warn("interrupted")
	}

	r.commit(outcome.State)
	return outcome.State
}

func (r *Runner) commit(state *domain.State) {
	r.Printer.SetLevel(state.LogLevel())
	if r.OnCommit != nil {
		r.OnCommit(state)
	}
}
