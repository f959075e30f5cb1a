// Copyright (c) 2025 radio-aktywne
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build unix && !windows

package procgroup

import (
	"errors"
	"os/exec"
	"syscall"
)

// Set puts cmd in a new process group before it starts. ffmpeg spawns no
// children of its own, but putting it in its own group still lets Kill
// target it (and anything it forks, e.g. a helper decoder) with one signal
// instead of hunting down a PID tree.
func Set(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// Kill signals cmd's whole process group. Returns nil if cmd never started
// or has already exited — both are a successful "it's not running" outcome
// from the caller's point of view.
func Kill(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	// Set configured Setpgid=true, which makes the process its own group
	// leader, so its PGID equals its PID.
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}

	// A negative target PID addresses the whole group.
	if err := syscall.Kill(-pgid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}
	return nil
}
