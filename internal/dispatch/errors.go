package dispatch

import (
	"errors"
	"fmt"

	"github.com/heeddb/heed/internal/trigger"
)

// CanceledError reports that a callback vetoed the command in flight.
//
// This is control flow, not failure: the host aborts the command and
// reports the vetoing registration's stated reason. No further
// callbacks fire for the command.
type CanceledError struct {
	// Event is the lifecycle point where the veto landed.
	Event trigger.Event

	// Registration names the vetoing registration.
	Registration string

	// Reason is the callback's stated justification.
	Reason string
}

// Error implements the error interface.
func (e *CanceledError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("command canceled by registration %q at %s: %s",
			e.Registration, e.Event, e.Reason)
	}
	return fmt.Sprintf("command canceled by registration %q at %s",
		e.Registration, e.Event)
}

// IsCanceled returns true if the error is a CanceledError.
// Uses errors.As to handle wrapped errors.
func IsCanceled(err error) bool {
	var ce *CanceledError
	return errors.As(err, &ce)
}

// FiringError reports that a callback's execution failed.
//
// Unlike a veto, this is a real failure: the command aborts and the
// underlying runtime error is preserved for unwrapping.
type FiringError struct {
	// Event is the lifecycle point where the callback ran.
	Event trigger.Event

	// Registration names the registration whose callback failed.
	Registration string

	// CallbackID is the callback that failed.
	CallbackID string

	// Err is the runtime's error.
	Err error
}

// Error implements the error interface.
func (e *FiringError) Error() string {
	return fmt.Sprintf("callback %q of registration %q failed at %s: %v",
		e.CallbackID, e.Registration, e.Event, e.Err)
}

// Unwrap returns the underlying runtime error.
func (e *FiringError) Unwrap() error {
	return e.Err
}

// IsFiringError returns true if the error is a FiringError.
// Uses errors.As to handle wrapped errors.
func IsFiringError(err error) bool {
	var fe *FiringError
	return errors.As(err, &fe)
}
