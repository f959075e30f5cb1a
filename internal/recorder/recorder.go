// Package recorder implements the core recording orchestration: resolve an
// event to its nearest scheduled instance, reserve a port, mint
// credentials, and launch the two-stage pipeline, grounded on
// original_source/emirecords/recording/recorder.py's Recorder.record and on
// the teacher's detached-goroutine-with-WaitGroup supervisor
// (internal/domain/session/manager/session_registry.go).
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/radio-aktywne/datarecords/internal/clock"
	"github.com/radio-aktywne/datarecords/internal/credentials"
	xglog "github.com/radio-aktywne/datarecords/internal/log"
	"github.com/radio-aktywne/datarecords/internal/metrics"
	"github.com/radio-aktywne/datarecords/internal/pipeline"
	"github.com/radio-aktywne/datarecords/internal/portpool"
	"github.com/radio-aktywne/datarecords/internal/reckey"
	"github.com/radio-aktywne/datarecords/internal/scheduleclient"
)

// ScheduleClient is the subset of scheduleclient.Client the Recorder needs.
type ScheduleClient interface {
	List(ctx context.Context, start, end time.Time, eventID uuid.UUID) ([]scheduleclient.Schedule, error)
}

// CredentialMinter is the subset of *credentials.Minter the Recorder needs.
type CredentialMinter interface {
	Mint() (credentials.Credentials, error)
}

// PortPool is the subset of *portpool.Pool the Recorder needs.
type PortPool interface {
	Reserve() (int, error)
	Release(port int)
	InUse() int
}

// Request is a recording request for an event (spec §4.2).
type Request struct {
	EventID uuid.UUID
	Format  string
}

// Response is returned once the pipeline has been launched and detached.
type Response struct {
	Port        int
	Credentials credentials.Credentials
}

// Recorder wires the schedule lookup, port reservation, credential minting
// and pipeline launch into a single Record operation.
type Recorder struct {
	Clock     clock.Clock
	Window    time.Duration
	Schedule  ScheduleClient
	Minter    CredentialMinter
	Ports     PortPool
	Pipelines pipeline.Factory

	log zerolog.Logger

	// pipelineCtx is the context every launched pipeline runs under. It is
	// never the originating request's context: a pipeline must outlive the
	// HTTP request that started it (spec §5), so it is only ever canceled
	// by CloseAndWait giving up on a clean drain.
	pipelineCtx    context.Context
	cancelPipeline context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New builds a Recorder. window bounds how far from "now" a scheduled
// instance may be and still be considered a match (spec §4.2's recorder
// window).
func New(clk clock.Clock, window time.Duration, schedule ScheduleClient, minter CredentialMinter, ports PortPool, pipelines pipeline.Factory) *Recorder {
	pipelineCtx, cancel := context.WithCancel(context.Background())
	return &Recorder{
		Clock:          clk,
		Window:         window,
		Schedule:       schedule,
		Minter:         minter,
		Ports:          ports,
		Pipelines:      pipelines,
		log:            xglog.WithComponent("recorder"),
		pipelineCtx:    pipelineCtx,
		cancelPipeline: cancel,
	}
}

// Record resolves req.EventID to its nearest scheduled instance, mints
// single-use credentials, reserves a port, launches the pipeline, and detaches a
// supervisor that releases the port once the pipeline ends. The port is
// released on every failure path after it was reserved, matching the
// teacher reference's try/except-free/raise shape.
func (r *Recorder) Record(ctx context.Context, req Request) (Response, error) {
	reference := r.Clock.NowUTCNaive()
	start := reference.Add(-r.Window)
	end := reference.Add(r.Window)

	schedules, err := r.Schedule.List(ctx, start, end, req.EventID)
	if err != nil {
		return Response{}, fmt.Errorf("recorder: list schedule: %w", err)
	}

	event, instance, err := nearestInstance(reference, req.EventID, schedules)
	if err != nil {
		return Response{}, err
	}

	creds, err := r.Minter.Mint()
	if err != nil {
		return Response{}, fmt.Errorf("recorder: mint credentials: %w", err)
	}

	port, err := r.Ports.Reserve()
	if err != nil {
		if errors.Is(err, portpool.ErrExhausted) {
			metrics.IncPortReservation("exhausted")
			return Response{}, ErrBusy
		}
		return Response{}, fmt.Errorf("recorder: reserve port: %w", err)
	}
	metrics.IncPortReservation("reserved")
	metrics.SetPortsInUse(r.Ports.InUse())

	plan := pipeline.Plan{
		Port:          port,
		Passphrase:    creds.Token,
		ListenTimeout: listenTimeout(creds, r.Clock),
		Format:        req.Format,
		SinkKey:       reckey.Make(event.ID, instance.Start, req.Format),
	}

	// The request's ctx is done for everything above this line: schedule
	// lookup, credential minting, port reservation all belong to the
	// request and may be cancelled with it. The pipeline itself must not
	// be, so it launches under r.pipelineCtx instead.
	handle, err := r.Pipelines.Create(r.pipelineCtx, plan)
	if err != nil {
		r.Ports.Release(port)
		metrics.IncPipelineOutcome("launch_failed")
		return Response{}, fmt.Errorf("%w: %v", ErrPipelineLaunchFailed, err)
	}

	if !r.goSupervise(port, handle) {
		// Shutting down: nobody will ever watch this pipeline to free the
		// port, so terminate it synchronously instead of leaking it.
		_ = handle.Close(5 * time.Second)
		r.Ports.Release(port)
		metrics.IncPipelineOutcome("rejected_shutdown")
		return Response{}, fmt.Errorf("%w: recorder is shutting down", ErrPipelineLaunchFailed)
	}

	return Response{Port: port, Credentials: creds}, nil
}

// goSupervise detaches a goroutine that waits for the pipeline to end and
// always frees the port, whatever the outcome. Returns false if the
// Recorder is shutting down and the call was rejected.
func (r *Recorder) goSupervise(port int, handle *pipeline.Handle) bool {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			r.Ports.Release(port)
			metrics.SetPortsInUse(r.Ports.InUse())
		}()

		status, err := handle.Wait(context.Background())
		if err != nil {
			r.log.Warn().Err(err).Int("port", port).Str("reason", status.Reason).Msg("pipeline ended with error")
			metrics.IncPipelineOutcome("failed")
			return
		}
		r.log.Info().Int("port", port).Msg("pipeline completed")
		metrics.IncPipelineOutcome("completed")
	}()

	return true
}

// CloseAndWait stops accepting new supervised pipelines and blocks until
// in-flight ones finish or ctx expires, for use during graceful shutdown.
func (r *Recorder) CloseAndWait(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The clean drain didn't finish in time: cancel pipelineCtx so the
		// remaining subprocesses are killed instead of leaking past
		// process exit.
		r.cancelPipeline()
		return fmt.Errorf("recorder: drain timeout: %w", ctx.Err())
	}
}

// listenTimeout is how long the SRT listener waits for a connection before
// giving up, derived from the credential expiry the way
// runner.py._build_ffmpeg_input does (expires_at - now, clamped to >= 0).
func listenTimeout(creds credentials.Credentials, clk clock.Clock) time.Duration {
	d := creds.ExpiresAt.Sub(clk.NowUTCNaive())
	if d < 0 {
		return 0
	}
	return d
}

// nearestInstance finds the schedule matching eventID and, within it, the
// instance whose UTC start is closest to reference. Mirrors
// Recorder._get_schedule + Recorder._find_nearest_instance: any failure to
// find a matching event or instance collapses to ErrInstanceNotFound.
func nearestInstance(reference time.Time, eventID uuid.UUID, schedules []scheduleclient.Schedule) (scheduleclient.Event, scheduleclient.Instance, error) {
	var matched *scheduleclient.Schedule
	for i := range schedules {
		if schedules[i].Event.ID == eventID {
			matched = &schedules[i]
			break
		}
	}
	if matched == nil || len(matched.Instances) == 0 {
		return scheduleclient.Event{}, scheduleclient.Instance{}, ErrInstanceNotFound
	}

	var best scheduleclient.Instance
	var bestDiff time.Duration
	haveBest := false

	for _, inst := range matched.Instances {
		utcStart, err := clock.ToUTC(inst.Start, matched.Event.Timezone)
		if err != nil {
			continue
		}
		diff := utcStart.Sub(reference)
		if diff < 0 {
			diff = -diff
		}
		if !haveBest || diff < bestDiff {
			best = inst
			bestDiff = diff
			haveBest = true
		}
	}

	if !haveBest {
		return scheduleclient.Event{}, scheduleclient.Instance{}, ErrInstanceNotFound
	}

	return matched.Event, best, nil
}
