package domain

import (
	"context"
	"time"
)

// Event tags a semantic state change that features listen for.
type Event int

const (
	EventWorkingDirectoryChanged Event = iota + 1
	EventPromptChanged
)

func (e Event) String() string {
	switch e {
	case EventWorkingDirectoryChanged:
		return "WorkingDirectoryChanged"
	case EventPromptChanged:
		return "PromptChanged"
	default:
		return "UnknownEvent"
	}
}

// Outcome is what a single transition produced.
type Outcome struct {
	// State is the canonical state after the transition.
	State *State
	// Changed is false when the command returned no new state.
	Changed bool
	// Events lists every event processed, in processing order.
	Events []Event
	// Iterations counts completed propagation passes.
	Iterations int
	// CapExceeded is set when events were still pending at the cap.
	CapExceeded bool
	// Canceled is set when the context ended between passes.
	Canceled bool
	// FeatureErrors collects listener failures that were skipped.
	FeatureErrors []*FeatureError
}

// CommandTrace describes a command invocation.
type CommandTrace struct {
	Timestamp time.Time
	Command   string
	Args      []string
	Duration  time.Duration
	Err       error
	Changed   bool
}

// PassTrace describes one propagation pass.
type PassTrace struct {
	Timestamp time.Time
	Event     Event
	Iteration int
	Pending   int
}

// FeatureTrace describes a single listener call.
type FeatureTrace struct {
	Timestamp time.Time
	Feature   string
	Event     Event
	Changed   bool
	Err       error
	Duration  time.Duration
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCommandStart  func(context.Context, *CommandTrace)
	OnCommandEnd    func(context.Context, *CommandTrace)
	OnPass          func(context.Context, *PassTrace)
	OnFeatureReturn func(context.Context, *FeatureTrace)
	OnCapExceeded   func(context.Context, *PassTrace)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommandStart:  chain(h.OnCommandStart, other.OnCommandStart),
		OnCommandEnd:    chain(h.OnCommandEnd, other.OnCommandEnd),
		OnPass:          chain(h.OnPass, other.OnPass),
		OnFeatureReturn: chain(h.OnFeatureReturn, other.OnFeatureReturn),
		OnCapExceeded:   chain(h.OnCapExceeded, other.OnCapExceeded),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
