// Package procgroup kills the muxer subprocess (and anything it spawned)
// as a unit: SIGTERM to the process group, then SIGKILL after a grace
// period if it hasn't exited. Grounded on the teacher's internal/procgroup.
package procgroup
