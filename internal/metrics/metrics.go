// Package metrics exposes the Prometheus counters/histograms the recorder
// and records catalog emit, grounded on the teacher's promauto usage in
// internal/pipeline/exec/ffmpeg/runner.go and internal/metrics/business.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	portReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_port_reservations_total",
		Help: "Total port pool reservation attempts by outcome",
	}, []string{"outcome"}) // outcome=reserved|exhausted

	portsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "datarecords_ports_in_use",
		Help: "Current number of reserved SRT listener ports",
	})

	recordRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_record_requests_total",
		Help: "Total record requests by outcome",
	}, []string{"outcome"}) // outcome=started|instance_not_found|busy|launch_failed|error

	pipelineOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_pipeline_outcomes_total",
		Help: "Total detached pipeline outcomes by result",
	}, []string{"result"}) // result=completed|failed|launch_failed|rejected_shutdown

	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_proc_terminate_total",
		Help: "Total process group termination attempts by signal and outcome",
	}, []string{"sig", "outcome"})

	procWaitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_proc_wait_total",
		Help: "Total process wait outcomes",
	}, []string{"outcome"})

	recordsOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_records_ops_total",
		Help: "Total records catalog operations by kind and outcome",
	}, []string{"op", "outcome"})
)

// IncPortReservation records a reserve() outcome ("reserved" or "exhausted").
func IncPortReservation(outcome string) {
	portReservations.WithLabelValues(outcome).Inc()
}

// SetPortsInUse reports the current in-use port count.
func SetPortsInUse(n int) {
	portsInUse.Set(float64(n))
}

// IncRecordRequest records a record() call outcome.
func IncRecordRequest(outcome string) {
	recordRequestsTotal.WithLabelValues(outcome).Inc()
}

// IncPipelineOutcome records a detached pipeline's terminal state.
func IncPipelineOutcome(result string) {
	pipelineOutcomesTotal.WithLabelValues(result).Inc()
}

// IncProcTerminate records a process termination attempt.
func IncProcTerminate(sig, outcome string) {
	procTerminateTotal.WithLabelValues(sig, outcome).Inc()
}

// IncProcWait records a process wait outcome.
func IncProcWait(outcome string) {
	procWaitTotal.WithLabelValues(outcome).Inc()
}

// IncRecordsOp records a records catalog operation outcome.
func IncRecordsOp(op, outcome string) {
	recordsOpsTotal.WithLabelValues(op, outcome).Inc()
}
