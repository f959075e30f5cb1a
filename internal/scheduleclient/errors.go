package scheduleclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks at the boundary, matching spec §4.3.
var (
	// ErrUnavailable wraps any transport/protocol failure talking to the
	// remote schedule service ("emishows").
	ErrUnavailable = errors.New("scheduleclient: schedule service unavailable")

	// ErrEventNotFound is the specialised 404 the service signals for a
	// single-event lookup.
	ErrEventNotFound = errors.New("scheduleclient: event not found")
)

// Error wraps a sentinel with operation context, grounded on the teacher's
// OWIError (internal/openwebif/errors.go).
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("scheduleclient: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Sentinel }
