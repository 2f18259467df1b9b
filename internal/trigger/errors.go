package trigger

import (
	"errors"
	"fmt"
)

// ConfigError represents a registration configuration problem.
//
// Configuration errors cover:
//   - Unrecognized event, timing, enabled-state, or command tag strings
//   - Duplicate registration names for an event
//   - Mutations that reference a registration that does not exist
//
// They surface immediately to the caller issuing the registration change;
// nothing is created or modified, and they are never retried.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description naming the bad input.
	Message string

	// Registration names the affected registration, when known.
	Registration string

	// Value is the offending input (tag string, event name, ...).
	Value string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeEventUnknown indicates an unrecognized event name.
	ErrCodeEventUnknown ConfigErrorCode = "EVENT_UNKNOWN"

	// ErrCodeTagUnknown indicates a command tag not in the taxonomy.
	ErrCodeTagUnknown ConfigErrorCode = "TAG_UNKNOWN"

	// ErrCodeTimingUnknown indicates an unrecognized timing name.
	ErrCodeTimingUnknown ConfigErrorCode = "TIMING_UNKNOWN"

	// ErrCodeEnabledUnknown indicates an unrecognized enabled-state name.
	ErrCodeEnabledUnknown ConfigErrorCode = "ENABLED_UNKNOWN"

	// ErrCodeRoleUnknown indicates an unrecognized session role name.
	ErrCodeRoleUnknown ConfigErrorCode = "ROLE_UNKNOWN"

	// ErrCodeDuplicateName indicates a registration name already in use
	// for the target event.
	ErrCodeDuplicateName ConfigErrorCode = "DUPLICATE_NAME"

	// ErrCodeNameNotFound indicates a mutation addressed a registration
	// that does not exist.
	ErrCodeNameNotFound ConfigErrorCode = "NAME_NOT_FOUND"

	// ErrCodeInvalidRegistration indicates a structurally invalid
	// registration (empty name, missing callback, ...).
	ErrCodeInvalidRegistration ConfigErrorCode = "INVALID_REGISTRATION"

	// ErrCodeStoredTagUnknown indicates a persisted filter tag that the
	// current taxonomy no longer recognizes (catalog drift). Fatal for
	// the command that observed it; repaired out of band.
	ErrCodeStoredTagUnknown ConfigErrorCode = "STORED_TAG_UNKNOWN"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Registration != "" {
		return fmt.Sprintf("%s: %s (registration=%s)", e.Code, e.Message, e.Registration)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if the error is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrorHasCode returns true if the error is a ConfigError with the
// given code. Uses errors.As to handle wrapped errors.
func ConfigErrorHasCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// NewDuplicateNameError creates a ConfigError for a name collision.
func NewDuplicateNameError(event Event, name string) *ConfigError {
	return &ConfigError{
		Code:         ErrCodeDuplicateName,
		Message:      fmt.Sprintf("registration %q already exists for event %s", name, event),
		Registration: name,
		Value:        name,
	}
}

// NewNameNotFoundError creates a ConfigError for a missing registration.
func NewNameNotFoundError(event Event, name string) *ConfigError {
	return &ConfigError{
		Code:         ErrCodeNameNotFound,
		Message:      fmt.Sprintf("no registration %q for event %s", name, event),
		Registration: name,
		Value:        name,
	}
}

// ValidationError reports one structural problem with a registration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
