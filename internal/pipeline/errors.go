package pipeline

import "errors"

// ErrLaunchFailed is returned when the stage A process could not be
// started at all (binary missing, args rejected, working dir unusable).
// Distinct from a pipeline that starts and later fails mid-stream, which
// is reported through Handle.Wait's ExitStatus instead (spec §4.5).
var ErrLaunchFailed = errors.New("pipeline: launch failed")
