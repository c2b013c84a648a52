// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the varstream bridge.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrNotFound: a variable name is absent from the Variable Space.
	// Fatal at activation; fatal mid-run too, since the bridge has no
	// representation for a temporarily missing variable.
	ErrNotFound = fmt.Errorf("variable not found")

	// ErrUnsupportedType: the host reported a type tag outside the
	// enumerated set, or a descriptor no adapter can be built from.
	ErrUnsupportedType = fmt.Errorf("unsupported variable type")

	// ErrEnumerationTooLarge: auto-discovery exceeded the enumeration
	// buffer cap; the caller must narrow the explicit variable list.
	ErrEnumerationTooLarge = fmt.Errorf("variable enumeration exceeds maximum size")

	// ErrRealTimeViolation: tick() ran on a thread with a fixed-priority
	// real-time scheduling policy while strict checking was enabled.
	// Not recoverable; the caller must abort the processing instance.
	ErrRealTimeViolation = fmt.Errorf("bridge used in real-time thread with strict checking enabled")

	// ErrBufferTooSmall: the enumeration buffer cannot hold the name
	// list; retry with a larger buffer.
	ErrBufferTooSmall = fmt.Errorf("buffer too small")

	// ErrInvalidHandle: the variable space handle is unusable.
	ErrInvalidHandle = fmt.Errorf("invalid variable space handle")

	// ErrLocked: a configuration input is immutable while the bridge
	// is active.
	ErrLocked = fmt.Errorf("configuration input locked while active")

	// ErrInactive: tick() called with no active configuration.
	ErrInactive = fmt.Errorf("bridge is not active")

	// ErrStreamClosed: push on a closed outlet.
	ErrStreamClosed = fmt.Errorf("stream is closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeNotFound
	ErrCodeUnsupportedType
	ErrCodeEnumerationTooLarge
	ErrCodeRealTimeViolation
	ErrCodeLocked
	ErrCodeTransport
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
