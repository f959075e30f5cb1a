package recorder

import "errors"

// Sentinel errors returned by Record, matching spec §4.2's typed error
// taxonomy.
var (
	// ErrInstanceNotFound covers both an unknown event and a known event
	// with no instance inside the lookup window; the Recorder never
	// distinguishes the two, mirroring original_source's Recorder.record
	// (a single InstanceNotFoundError from either _get_schedule or
	// _find_nearest_instance).
	ErrInstanceNotFound = errors.New("recorder: instance not found")

	// ErrBusy is returned when the port pool has nothing free to reserve.
	ErrBusy = errors.New("recorder: no ports available")

	// ErrPipelineLaunchFailed stands in for any pipeline launch failure so
	// callers can errors.Is against the recorder package without importing
	// pipeline. The underlying error is kept only as message text, so
	// errors.Is(err, pipeline.ErrLaunchFailed) does not match.
	ErrPipelineLaunchFailed = errors.New("recorder: pipeline launch failed")
)
