package live

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and hub conditions.
var (
	// ErrSessionClosed is returned when work is queued on a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("live: session not found")

	// ErrDispatchQueueFull is returned when a session's queue is full and
	// the work was dropped.
	ErrDispatchQueueFull = errors.New("live: dispatch queue full")

	// ErrMaxSessionsReached is returned when the hub is at capacity.
	ErrMaxSessionsReached = errors.New("live: max sessions reached")
)

// SessionError wraps an error with session context.
type SessionError struct {
	SessionID string
	Op        string
	Err       error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("live: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("live: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}
