package model

import (
	"errors"
	"fmt"
)

// Error taxonomy of a reporter invocation. The first three abort the
// invocation without writing a report; ErrSubprocessFailure does not.
var (
	ErrMalformedFrame    = errors.New("malformed frame")
	ErrUnexpectedEvent   = errors.New("unexpected event")
	ErrTruncatedStream   = errors.New("event stream closed before ended_run")
	ErrSubprocessFailure = errors.New("subprocess failure")
)

// UnexpectedEventError describes an event received in a state that forbids it.
type UnexpectedEventError struct {
	Kind  EventKind
	State string
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("unexpected event %s in state %s", e.Kind, e.State)
}

// Unwrap allows errors.Is(err, ErrUnexpectedEvent).
func (e *UnexpectedEventError) Unwrap() error {
	return ErrUnexpectedEvent
}

// SubprocessError reports a non-zero exit status of the test executable.
type SubprocessError struct {
	ExitCode int
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("exited with status %d", e.ExitCode)
}

// Unwrap allows errors.Is(err, ErrSubprocessFailure).
func (e *SubprocessError) Unwrap() error {
	return ErrSubprocessFailure
}

// IsFatal reports whether err prevents a report from being written.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	return !errors.Is(err, ErrSubprocessFailure)
}
