package runner

import (
	"log/slog"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/output"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithReader configures where lines are read from.
func WithReader(reader LineReader) Option {
	return func(r *Runner) {
		r.Reader = reader
	}
}

// WithPrinter configures where results and errors are written.
func WithPrinter(p *output.Printer) Option {
	return func(r *Runner) {
		r.Printer = p
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithSessionID tags every log line of the session.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithStateObserver is called with every committed State.
func WithStateObserver(fn func(*domain.State)) Option {
	return func(r *Runner) {
		r.OnCommit = fn
	}
}

// WithInterruptSource sets a channel that interrupts the running command,
// in addition to OS signals.
func WithInterruptSource(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.InterruptSource = ch
	}
}

// WithSignals toggles OS signal handling while commands run.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.Signals = enabled
	}
}
