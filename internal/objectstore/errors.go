package objectstore

import "errors"

// Sentinel errors for errors.Is checks, matching spec §4.4.
var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("objectstore: object not found")

	// ErrAlreadyExists marks an already occupied key. No Client method
	// returns it: Put overwrites an existing key, and classify never maps an
	// SDK error to it.
	ErrAlreadyExists = errors.New("objectstore: object already exists")

	// ErrUnavailable wraps any other transport/service failure.
	ErrUnavailable = errors.New("objectstore: store unavailable")
)
