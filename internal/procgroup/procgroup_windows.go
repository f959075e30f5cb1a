// Copyright (c) 2025 radio-aktywne
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build windows

package procgroup

import (
	"os/exec"
	"syscall"
)

// Set is a no-op on Windows: there is no process-group concept to join
// here, and the ffmpeg recording pipeline isn't supported as a Windows
// service target for this repo today.
func Set(cmd *exec.Cmd) {}

// Kill maps SIGKILL onto Process.Kill(); Windows has no graceful-signal
// equivalent of SIGTERM, so a SIGTERM request is a no-op and the caller's
// grace period just runs out before the forced kill lands.
func Kill(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if sig == syscall.SIGKILL {
		return cmd.Process.Kill()
	}
	return nil
}
