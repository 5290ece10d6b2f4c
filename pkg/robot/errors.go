package robot

import (
	"errors"
	"fmt"
)

var (
	// ErrSpeedOutOfRange is returned when a wheel speed exceeds MaxSpeed.
	ErrSpeedOutOfRange = errors.New("robot: wheel speed out of range")

	// ErrBadFrame is returned when the daemon sends a malformed sensor frame.
	ErrBadFrame = errors.New("robot: malformed line sensor frame")
)

// APIError wraps a failed daemon call with the endpoint it targeted.
type APIError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("robot daemon %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}
