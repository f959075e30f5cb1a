// Package pipeline spawns and supervises the two-stage recording pipeline
// (SRT listener + container mux, piped into the object store), grounded on
// internal/pipeline/exec/ffmpeg.Runner's process-lifecycle shape and
// original_source/emirecords/services/recording/runner.py's exact option
// names.
package pipeline

import "time"

// Plan is everything PipelineFactory needs to launch one recording.
type Plan struct {
	// SRT listener (stage A)
	Port          int
	Passphrase    string
	ListenTimeout time.Duration

	// Container mux (stage A, same process as the listener per the
	// teacher's single-binary-two-streams idiom)
	Format string // container/muxer name, e.g. "mpegts", "matroska"

	// Object store sink (stage B)
	SinkKey string
}

// ExitStatus describes how the pipeline ended, mirroring the teacher's
// internal/pipeline/model.ExitStatus shape.
type ExitStatus struct {
	Code      int
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time
}
