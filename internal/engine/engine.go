package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/yurixander/minimal/internal/guard"
	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/registry"
)

// DefaultMaxIterations bounds the number of propagation passes per transition.
const DefaultMaxIterations = 100

// FeatureSource supplies the listeners to fan events out to.
type FeatureSource interface {
	Active() []registry.Feature
}

// Engine runs commands and propagates the resulting events through features
// until the state settles.
type Engine struct {
	features        FeatureSource
	maxIterations   int
	commandTimeout  time.Duration
	listenerTimeout time.Duration
	deltaPoints     []domain.DeltaPoint
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithMaxIterations sets the pass cap. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithCommandTimeout bounds each command handler. Zero disables the bound.
func WithCommandTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.commandTimeout = d
	}
}

// WithListenerTimeout bounds each listener call. Zero disables the bound.
func WithListenerTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.listenerTimeout = d
	}
}

// WithDeltaPoints replaces the field-to-event table.
func WithDeltaPoints(points []domain.DeltaPoint) Option {
	return func(e *Engine) {
		e.deltaPoints = slices.Clone(points)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an Engine that fans events out to features.
func New(features FeatureSource, opts ...Option) *Engine {
	e := &Engine{
		features:      features,
		maxIterations: DefaultMaxIterations,
		deltaPoints:   slices.Clone(domain.DefaultDeltaPoints),
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxIterations returns the configured pass cap.
func (e *Engine) MaxIterations() int { return e.maxIterations }

// Transition runs cmd against current and propagates the resulting events.
// A failing command leaves the state untouched and returns *domain.CommandError
// alongside an Outcome carrying current.
func (e *Engine) Transition(ctx context.Context, cmd registry.Command, args []string, current *domain.State) (*domain.Outcome, error) {
	trace := &domain.CommandTrace{Timestamp: time.Now(), Command: cmd.Name, Args: slices.Clone(args)}
	if e.hooks.OnCommandStart != nil {
		e.hooks.OnCommandStart(ctx, trace)
	}

	post, err := guard.Call(ctx, e.commandTimeout, func(ctx context.Context) (*domain.State, error) {
		return cmd.Handler(ctx, slices.Clone(args), current)
	})

	trace.Duration = time.Since(trace.Timestamp)
	trace.Err = err
	trace.Changed = err == nil && post != nil
	if e.hooks.OnCommandEnd != nil {
		e.hooks.OnCommandEnd(ctx, trace)
	}

	if err != nil {
		e.logCommandFailure(cmd.Name, err)
		return &domain.Outcome{State: current}, &domain.CommandError{Command: cmd.Name, Err: err}
	}
	if post == nil {
		return &domain.Outcome{State: current}, nil
	}

	outcome := e.propagate(ctx, current, post, domain.Delta(e.deltaPoints, current, post))
	outcome.Changed = true
	return outcome, nil
}

// Prime runs the propagation loop with every bound event pending, so
// features can derive their state from the initial one (e.g. the prompt).
func (e *Engine) Prime(ctx context.Context, initial *domain.State) *domain.Outcome {
	return e.propagate(ctx, initial, initial, domain.Events(e.deltaPoints))
}

// propagate is the fixed-point loop. committed trails working by one pass.
func (e *Engine) propagate(ctx context.Context, committed, working *domain.State, seed []domain.Event) *domain.Outcome {
	// Unbound fields change without raising events.
	if len(seed) == 0 {
		return &domain.Outcome{State: working}
	}

	pending := newEventSet(seed...)
	outcome := &domain.Outcome{}

	for pending.Len() > 0 {
		if ctx.Err() != nil {
			outcome.Canceled = true
			e.logger.Debug("propagation canceled", "pending", pending.Len(), "iterations", outcome.Iterations)
			break
		}

		active := e.features.Active()
		if len(active) == 0 {
			// Nothing listens, so no pass runs.
			for pending.Len() > 0 {
				outcome.Events = append(outcome.Events, pending.Pop())
			}
			committed = working
			break
		}

		event := pending.Pop()
		outcome.Events = append(outcome.Events, event)
		pass := &domain.PassTrace{
			Timestamp: time.Now(),
			Event:     event,
			Iteration: outcome.Iterations,
			Pending:   pending.Len(),
		}
		if e.hooks.OnPass != nil {
			e.hooks.OnPass(ctx, pass)
		}

		for _, feature := range active {
			next, err := e.callListener(ctx, feature, event, working, committed)
			if err != nil {
				outcome.FeatureErrors = append(outcome.FeatureErrors, &domain.FeatureError{
					Feature: feature.Name,
					Event:   event,
					Err:     err,
				})
				continue
			}
			if next == nil {
				continue
			}
			for _, raised := range domain.Delta(e.deltaPoints, working, next) {
				pending.Add(raised)
			}
			working = next
		}

		committed = working
		outcome.Iterations++

		if outcome.Iterations >= e.maxIterations && pending.Len() > 0 {
			outcome.CapExceeded = true
			e.logger.Debug("max context iteration count exceeded",
				"max_iterations", e.maxIterations,
				"last_event", event.String(),
				"pending", pending.Len())
			if e.hooks.OnCapExceeded != nil {
				e.hooks.OnCapExceeded(ctx, pass)
			}
			break
		}
	}

	outcome.State = committed
	return outcome
}

func (e *Engine) callListener(ctx context.Context, feature registry.Feature, event domain.Event, working, committed *domain.State) (*domain.State, error) {
	start := time.Now()
	next, err := guard.Call(ctx, e.listenerTimeout, func(ctx context.Context) (*domain.State, error) {
		return feature.Listener(ctx, event, working, committed)
	})

	if err != nil {
		attrs := []any{"feature", feature.Name, "event", event.String(), "error", err}
		var pe *domain.PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, "stack", string(pe.Stack))
		}
		e.logger.Debug("feature listener failed", attrs...)
	}

	if e.hooks.OnFeatureReturn != nil {
		e.hooks.OnFeatureReturn(ctx, &domain.FeatureTrace{
			Timestamp: start,
			Feature:   feature.Name,
			Event:     event,
			Changed:   err == nil && next != nil,
			Err:       err,
			Duration:  time.Since(start),
		})
	}
	return next, err
}

func (e *Engine) logCommandFailure(name string, err error) {
	attrs := []any{"command", name, "error", err}
	var pe *domain.PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, "stack", string(pe.Stack))
	}
	e.logger.Debug("command failed", attrs...)
}
