package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	xglog "github.com/radio-aktywne/datarecords/internal/log"
	"github.com/radio-aktywne/datarecords/internal/procgroup"
)

var launchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "datarecords_pipeline_launch_total",
	Help: "Outcomes of pipeline launch attempts",
}, []string{"outcome"})

// Sink accepts the stage A stdout stream and persists it under key. Modeled
// as a narrow interface so *objectstore.Client satisfies it without an
// import cycle.
type Sink interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Factory is implemented by FFmpegFactory below; an interface exists so Recorder
// can be tested against a fake.
type Factory interface {
	Create(ctx context.Context, plan Plan) (*Handle, error)
}

// FFmpegFactory spawns ffmpeg as the stage A SRT-listener-plus-mux process
// and streams its stdout into a Sink as stage B.
type FFmpegFactory struct {
	BinPath     string // defaults to "ffmpeg"
	Sink        Sink
	GraceKill   time.Duration // grace period before SIGKILL on Close
	contentType string
}

// NewFFmpegFactory builds a Factory. binPath empty defaults to "ffmpeg" on
// PATH; grace defaults to 5s.
func NewFFmpegFactory(binPath string, sink Sink, grace time.Duration) *FFmpegFactory {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &FFmpegFactory{BinPath: binPath, Sink: sink, GraceKill: grace, contentType: "application/octet-stream"}
}

// Handle represents one launched, in-flight recording pipeline.
type Handle struct {
	cmd     *exec.Cmd
	grace   time.Duration
	waitCh  chan error // ffmpeg process exit
	doneCh  chan error // upload goroutine completion
	started time.Time
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// srtURL builds the SRT listener URL per the options confirmed against
// original_source/emirecords/services/recording/runner.py: mode=listener,
// listen_timeout in whole microseconds, passphrase passed through verbatim.
func srtURL(port int, passphrase string, timeout time.Duration) string {
	micros := timeout.Microseconds()
	if micros <= 0 {
		micros = 1
	}
	return fmt.Sprintf("srt://0.0.0.0:%d?mode=listener&listen_timeout=%d&passphrase=%s",
		port, micros, passphrase)
}

// Create launches ffmpeg listening on plan.Port, muxing into plan.Format,
// and starts streaming its stdout into the Sink under plan.SinkKey. Any
// failure to start the process is ErrLaunchFailed; failures that occur
// later surface through Handle.Wait.
func (f *FFmpegFactory) Create(ctx context.Context, plan Plan) (*Handle, error) {
	input := srtURL(plan.Port, plan.Passphrase, plan.ListenTimeout)

	args := []string{
		"-i", input,
		"-acodec", "copy",
		"-vcodec", "copy",
		"-f", plan.Format,
		"pipe:1",
	}

	return f.create(ctx, args, plan.Port, plan.SinkKey)
}

// create launches args under f.BinPath and wires stdout into f.Sink. Split
// out from Create so tests can exercise the launch/wait/terminate mechanics
// against arbitrary shell commands instead of a real ffmpeg binary.
func (f *FFmpegFactory) create(ctx context.Context, args []string, port int, sinkKey string) (*Handle, error) {
	log := xglog.WithComponent("pipeline").With().
		Int("port", port).
		Str("key", sinkKey).
		Logger()

	cmd := exec.CommandContext(ctx, f.BinPath, args...)
	procgroup.Set(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		launchOutcomes.WithLabelValues("stdout_pipe_error").Inc()
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrLaunchFailed, err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		launchOutcomes.WithLabelValues("stderr_pipe_error").Inc()
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrLaunchFailed, err)
	}

	if err := cmd.Start(); err != nil {
		launchOutcomes.WithLabelValues("start_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	launchOutcomes.WithLabelValues("started").Inc()

	h := &Handle{
		cmd:     cmd,
		grace:   f.GraceKill,
		waitCh:  make(chan error, 1),
		doneCh:  make(chan error, 1),
		started: time.Now(),
		log:     log,
	}

	go drainStderr(log, stderr)
	go func() { h.waitCh <- cmd.Wait() }()
	go func() {
		uploadErr := f.Sink.Put(ctx, sinkKey, stdout, f.contentType)
		if uploadErr != nil {
			log.Error().Err(uploadErr).Msg("sink upload failed")
		}
		h.doneCh <- uploadErr
	}()

	return h, nil
}

func drainStderr(log zerolog.Logger, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Debug().Str("line", scanner.Text()).Msg("ffmpeg stderr")
	}
}

// Wait blocks until both the process has exited and the upload has
// finished, then returns the combined outcome. Cancelling ctx terminates
// the process group (SIGTERM, then SIGKILL after grace) rather than
// leaking it.
func (h *Handle) Wait(ctx context.Context) (ExitStatus, error) {
	var procErr, uploadErr error

	select {
	case procErr = <-h.waitCh:
	case <-ctx.Done():
		procErr = procgroup.Terminate(h.cmd, h.waitCh, h.grace)
	}

	uploadErr = <-h.doneCh

	status := ExitStatus{StartedAt: h.started, EndedAt: time.Now()}
	if procErr != nil {
		status.Code = exitCode(procErr)
		status.Reason = "process_error"
		return status, procErr
	}
	if uploadErr != nil {
		status.Code = -1
		status.Reason = "upload_error"
		return status, uploadErr
	}
	status.Reason = "ok"
	return status, nil
}

// Close terminates an in-flight pipeline without waiting for a natural
// exit, used when the caller abandons the recording before it completes.
func (h *Handle) Close(grace time.Duration) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	if grace <= 0 {
		grace = h.grace
	}
	return procgroup.Terminate(h.cmd, h.waitCh, grace)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface{ ExitCode() int }
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
