// Copyright (c) 2025 radio-aktywne
// Licensed under the PolyForm Noncommercial License 1.0.0

package procgroup

import (
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/radio-aktywne/datarecords/internal/metrics"
)

// Terminate tears down cmd's process group: SIGTERM first, then SIGKILL if
// it hasn't exited within grace. waitCh is the channel fed by the caller's
// own cmd.Wait() goroutine; Terminate drains it and returns whatever error
// that Wait() produced. Safe to call with a nil or already-exited cmd.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	signalProcessGroup(cmd, syscall.SIGTERM, "SIGTERM")

	select {
	case err := <-waitCh:
		recordWaitOutcome("exit0", "exit_nonzero", err)
		return err
	case <-time.After(grace):
		signalProcessGroup(cmd, syscall.SIGKILL, "SIGKILL")
		err := <-waitCh
		recordWaitOutcome("forced_exit0", "forced_error", err)
		return err
	}
}

// signalProcessGroup sends sig via Kill and records the outcome under the
// given metric label. A process that already exited between the caller
// deciding to signal it and this call landing is not an error condition
// worth surfacing.
func signalProcessGroup(cmd *exec.Cmd, sig syscall.Signal, label string) {
	switch err := Kill(cmd, sig); {
	case err == nil:
		metrics.IncProcTerminate(label, "sent")
	case alreadyExited(err):
		metrics.IncProcTerminate(label, "esrch")
	default:
		metrics.IncProcTerminate(label, "error")
	}
}

func alreadyExited(err error) bool {
	return errors.Is(err, syscall.ESRCH) ||
		strings.Contains(err.Error(), "process already finished") ||
		strings.Contains(err.Error(), "no such process")
}

func recordWaitOutcome(okOutcome, errOutcome string, err error) {
	if err == nil {
		metrics.IncProcWait(okOutcome)
		return
	}
	metrics.IncProcWait(errOutcome)
}
