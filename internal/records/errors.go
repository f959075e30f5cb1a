package records

import "errors"

// Sentinel errors for errors.Is checks, matching spec §4.4's catalog error
// taxonomy.
var (
	// ErrEventNotFound is returned when the referenced event does not
	// exist in the schedule service.
	ErrEventNotFound = errors.New("records: event not found")

	// ErrBadEventType is returned when the event exists but is not a live
	// event (gecko/services/records/service.py's BadEventTypeError).
	ErrBadEventType = errors.New("records: event is not a live event")

	// ErrInstanceNotFound is returned when no scheduled instance matches
	// the requested start exactly.
	ErrInstanceNotFound = errors.New("records: instance not found")

	// ErrAlreadyExists is returned by Upload when a record already
	// occupies the target key (head-before-put conflict check).
	ErrAlreadyExists = errors.New("records: record already exists")
)
