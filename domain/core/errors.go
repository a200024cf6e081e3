package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrScreenNotFound = fmt.Errorf("%w: screen", ErrNotFound)
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Workflow errors
	ErrStepUnreachable = errors.New("step is not reachable")
	ErrRunInFlight     = errors.New("an analysis run is already in flight")
	ErrNotReady        = errors.New("critical validation checks have not passed")
	ErrStaleResponse   = errors.New("response belongs to a superseded request")
	ErrNoResult        = errors.New("no analysis result available")
	ErrNoSample        = errors.New("no data sample loaded")

	// Input errors
	ErrUnknownKind       = errors.New("unknown analysis kind")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidSample     = errors.New("invalid data sample")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewStepError(step int, reason string) error {
	return fmt.Errorf("%w: step %d %s", ErrStepUnreachable, step, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsWorkflowError reports errors that leave the screen unchanged and can be
// retried by the user.
func IsWorkflowError(err error) bool {
	return errors.Is(err, ErrStepUnreachable) ||
		errors.Is(err, ErrRunInFlight) ||
		errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrNoResult) ||
		errors.Is(err, ErrNoSample)
}
