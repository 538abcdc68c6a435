// Package guard runs collaborator code (command handlers, feature
// listeners, initializers) under a deadline, converting panics into errors.
package guard

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/yurixander/minimal/pkg/domain"
)

type result[T any] struct {
	value T
	err   error
}

// Call runs fn in its own goroutine and waits for it, the timeout or ctx.
// A zero timeout waits for ctx only. A panic in fn is returned as
// *domain.PanicError. When the deadline fires first the goroutine is
// abandoned and the error wraps domain.ErrTimeout.
func Call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: &domain.PanicError{Value: r, Stack: debug.Stack()}}
			}
		}()
		v, err := fn(callCtx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-callCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
	}
}
