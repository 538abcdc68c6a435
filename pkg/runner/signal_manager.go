package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager scopes OS interrupts to a single command. While armed,
// SIGINT and SIGTERM cancel Context instead of terminating the process.
type SignalManager struct {
	parent context.Context
	source <-chan struct{}
	notify bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager creates a new manager and immediately starts listening
// for signals. source is an optional extra interrupt trigger.
func NewSignalManager(parent context.Context, source <-chan struct{}) *SignalManager {
	return newSignalManager(parent, source, true)
}

func newSignalManager(parent context.Context, source <-chan struct{}, notify bool) *SignalManager {
	sm := &SignalManager{parent: parent, source: source, notify: notify}
	sm.Reset()
	return sm
}

// Context returns the current signal context.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Reset re-arms the signal listener with a fresh context.
func (sm *SignalManager) Reset() {
	if sm.cancel != nil {
		sm.cancel()
	}
	ctx, stop := sm.parent, context.CancelFunc(func() {})
	if sm.notify {
		ctx, stop = signal.NotifyContext(sm.parent, os.Interrupt, syscall.SIGTERM)
	}
	ctx, cancel := context.WithCancel(ctx)
	sm.ctx = ctx
	sm.cancel = func() {
		cancel()
		stop()
	}

	if sm.source != nil {
		go func() {
			select {
			case <-sm.source:
				cancel()
			case <-ctx.Done():
			}
		}()
	}
}

// Interrupted reports whether the current context was cancelled by a
// signal rather than by its parent.
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil && sm.parent.Err() == nil
}

// Stop permanently stops the signal listener.
func (sm *SignalManager) Stop() {
	if sm.cancel != nil {
		sm.cancel()
	}
}
