package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"statflow/domain/analysis"
)

// Recorder exposes run and export measurements as Prometheus metrics. It
// satisfies the recorder interfaces of the analysis and export packages.
type Recorder struct {
	registry *prometheus.Registry

	runsStarted   *prometheus.CounterVec
	runsFinished  *prometheus.CounterVec
	runsDiscarded *prometheus.CounterVec
	runsInFlight  *prometheus.GaugeVec
	runDuration   *prometheus.HistogramVec
	exports       *prometheus.CounterVec
	exportTime    *prometheus.HistogramVec
}

// NewRecorder registers the metrics on a fresh registry together with the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statflow_runs_started_total",
			Help: "Analysis runs sent to the compute service.",
		}, []string{"kind"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statflow_runs_finished_total",
			Help: "Analysis runs settled, by outcome.",
		}, []string{"kind", "status"}),
		runsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statflow_runs_discarded_total",
			Help: "Compute responses dropped because the inputs changed while in flight.",
		}, []string{"kind"}),
		runsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "statflow_runs_in_flight",
			Help: "Analysis runs awaiting a compute response.",
		}, []string{"kind"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statflow_run_duration_seconds",
			Help:    "Wall time of settled compute calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind", "status"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statflow_exports_total",
			Help: "Export artifacts produced, by format and outcome.",
		}, []string{"format", "outcome"}),
		exportTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statflow_export_duration_seconds",
			Help:    "Time to render one export artifact.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}
	r.registry.MustRegister(
		r.runsStarted, r.runsFinished, r.runsDiscarded, r.runsInFlight, r.runDuration,
		r.exports, r.exportTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the metrics live on
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RunStarted counts a compute call
func (r *Recorder) RunStarted(kind analysis.Kind) {
	r.runsStarted.WithLabelValues(string(kind)).Inc()
	r.runsInFlight.WithLabelValues(string(kind)).Inc()
}

// RunFinished records a settled run
func (r *Recorder) RunFinished(kind analysis.Kind, status analysis.RunStatus, elapsed time.Duration) {
	r.runsInFlight.WithLabelValues(string(kind)).Dec()
	r.runsFinished.WithLabelValues(string(kind), string(status)).Inc()
	r.runDuration.WithLabelValues(string(kind), string(status)).Observe(elapsed.Seconds())
}

// RunDiscarded records a stale response
func (r *Recorder) RunDiscarded(kind analysis.Kind) {
	r.runsInFlight.WithLabelValues(string(kind)).Dec()
	r.runsDiscarded.WithLabelValues(string(kind)).Inc()
}

// ExportFinished records one export artifact
func (r *Recorder) ExportFinished(format string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.exports.WithLabelValues(format, outcome).Inc()
	r.exportTime.WithLabelValues(format).Observe(elapsed.Seconds())
}
