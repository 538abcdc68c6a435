package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned when no command is registered under a name.
var ErrUnknownCommand = errors.New("unknown command")

// ErrTimeout is returned when a handler, listener or initializer exceeds its budget.
var ErrTimeout = errors.New("timed out")

// ErrKeyNotFound is returned by stores when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// ErrInvalidLogLevel is returned when a level name cannot be parsed.
var ErrInvalidLogLevel = errors.New("invalid log level")

// CommandError wraps a failure raised by a command handler.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// FeatureError wraps a failure raised by a feature listener or initializer.
type FeatureError struct {
	Feature string
	Event   Event
	Err     error
}

func (e *FeatureError) Error() string {
	if e.Event == 0 {
		return fmt.Sprintf("feature %s: %v", e.Feature, e.Err)
	}
	return fmt.Sprintf("feature %s on %s: %v", e.Feature, e.Event, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// PanicError is a recovered panic together with the goroutine stack.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
