package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yurixander/minimal/internal/guard"
	"github.com/yurixander/minimal/pkg/domain"
)

// Listener reacts to an event. working is the state accumulated so far in
// the current pass, committed is the state at the end of the previous pass.
// Returning nil means no change.
type Listener func(ctx context.Context, event domain.Event, working, committed *domain.State) (*domain.State, error)

// Initializer decides at startup whether a feature should run at all.
type Initializer func(ctx context.Context, initial *domain.State) (bool, error)

// Feature describes a registered feature.
type Feature struct {
	Name        string
	Description string
	Listener    Listener
	Initializer Initializer
	// AwaitInit makes startup wait for the initializer. Otherwise it runs in
	// the background and the feature stays pending until it returns.
	AwaitInit bool
}

// Status is the lifecycle stage of a feature.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// FeatureOption configures InitializeFeatures.
type FeatureOption func(*Features)

// WithFeatureLogger sets the logger used for initialization diagnostics.
func WithFeatureLogger(logger *slog.Logger) FeatureOption {
	return func(f *Features) {
		f.logger = logger
	}
}

// WithInitTimeout bounds every initializer. Zero disables the bound.
func WithInitTimeout(d time.Duration) FeatureOption {
	return func(f *Features) {
		f.timeout = d
	}
}

// Features is the feature table in registration order.
type Features struct {
	mu       sync.RWMutex
	order    []Feature
	status   map[string]Status
	reasons  map[string]error
	logger   *slog.Logger
	timeout  time.Duration
	inflight errgroup.Group
}

// InitializeFeatures registers defs and runs their initializers against
// initial. Awaited initializers run concurrently and complete before this
// returns. Failures, panics, timeouts and false results disable a feature
// for the rest of the process.
func InitializeFeatures(ctx context.Context, initial *domain.State, defs []Feature, opts ...FeatureOption) *Features {
	f := &Features{
		status:  make(map[string]Status, len(defs)),
		reasons: make(map[string]error),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}

	var awaited, background []Feature
	for _, def := range defs {
		if def.Listener == nil {
			f.logger.Error("feature has no listener", "name", def.Name)
			continue
		}
		if _, exists := f.status[def.Name]; exists {
			f.logger.Error("duplicate feature name, ignoring later definition", "name", def.Name)
			continue
		}
		f.order = append(f.order, def)
		switch {
		case def.Initializer == nil:
			f.status[def.Name] = StatusActive
		case def.AwaitInit:
			f.status[def.Name] = StatusPending
			awaited = append(awaited, def)
		default:
			f.status[def.Name] = StatusPending
			background = append(background, def)
		}
	}

	for _, def := range background {
		f.inflight.Go(func() error {
			return f.initialize(ctx, initial, def)
		})
	}

	// A failure disables only its own feature, so siblings are not canceled.
	var g errgroup.Group
	for _, def := range awaited {
		g.Go(func() error {
			return f.initialize(ctx, initial, def)
		})
	}
	if err := g.Wait(); err != nil {
		f.logger.Debug("awaited feature initialization failed", "error", err)
	}

	return f
}

// initialize runs def's initializer and records the outcome. The returned
// error is the *domain.FeatureError stored as the feature's Reason.
func (f *Features) initialize(ctx context.Context, initial *domain.State, def Feature) error {
	ok, err := guard.Call(ctx, f.timeout, func(ctx context.Context) (bool, error) {
		return def.Initializer(ctx, initial)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil || !ok {
		f.status[def.Name] = StatusDisabled
		f.logger.Debug("feature disabled by initializer", "feature", def.Name, "error", err)
		if err == nil {
			return nil
		}
		reason := &domain.FeatureError{Feature: def.Name, Err: err}
		f.reasons[def.Name] = reason
		return reason
	}
	f.status[def.Name] = StatusActive
	f.logger.Debug("feature initialized", "feature", def.Name)
	return nil
}

// Wait blocks until every background initializer has returned or ctx ends.
func (f *Features) Wait(ctx context.Context) error {
	done := make(chan struct{})
	var err error
	go func() {
		err = f.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		if err != nil {
			f.logger.Debug("background feature initialization failed", "error", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active returns a snapshot of the active features in registration order.
func (f *Features) Active() []Feature {
	f.mu.RLock()
	defer f.mu.RUnlock()
	active := make([]Feature, 0, len(f.order))
	for _, def := range f.order {
		if f.status[def.Name] == StatusActive {
			active = append(active, def)
		}
	}
	return active
}

// All returns every registered feature in registration order.
func (f *Features) All() []Feature {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Feature, len(f.order))
	copy(out, f.order)
	return out
}

// Status returns the stage of the named feature.
func (f *Features) Status(name string) (Status, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.status[name]
	return s, ok
}

// Reason returns the initializer error that disabled the feature, if any.
func (f *Features) Reason(name string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.reasons[name]
}
