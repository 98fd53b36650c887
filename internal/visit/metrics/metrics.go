package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for checkpoint registrations.
const (
	OutcomeRecorded       = "recorded"
	OutcomeRouteViolation = "route_violation"
	OutcomeError          = "error"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the visit module.
// All methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	SchedulesCreated        prometheus.Counter
	ScheduleTransitions     *prometheus.CounterVec
	CheckpointRegistrations *prometheus.CounterVec
	VisitsCompleted         prometheus.Counter
	RegisterDuration        prometheus.Histogram
	EvaluateDuration        prometheus.Histogram
	OverdueVisits           prometheus.Gauge
	OverdueScanDuration     prometheus.Histogram
	OverdueScanFailures     prometheus.Counter
}

// NewWithRegistry registers the visit metrics with reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SchedulesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "visitflow_schedules_created_total",
			Help: "Total number of visit schedules created",
		}),
		ScheduleTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitflow_schedule_transitions_total",
			Help: "Schedule status changes by source and target status",
		}, []string{"from", "to"}),
		CheckpointRegistrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitflow_checkpoint_registrations_total",
			Help: "Checkpoint registration attempts by outcome",
		}, []string{"outcome"}),
		VisitsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "visitflow_visits_completed_total",
			Help: "Schedules completed by the compliance evaluator",
		}),
		RegisterDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitflow_register_checkpoint_duration_seconds",
			Help:    "Duration of RegisterCheckpoint including evaluation",
			Buckets: latencyBuckets,
		}),
		EvaluateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitflow_evaluate_duration_seconds",
			Help:    "Duration of a compliance evaluation for one visitor",
			Buckets: latencyBuckets,
		}),
		OverdueVisits: f.NewGauge(prometheus.GaugeOpts{
			Name: "visitflow_overdue_visits",
			Help: "Number of overdue visits found by the last successful scan",
		}),
		OverdueScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitflow_overdue_scan_duration_seconds",
			Help:    "Duration of overdue scans",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		OverdueScanFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "visitflow_overdue_scan_failures_total",
			Help: "Overdue scans that failed to load data",
		}),
	}
}

func (m *Metrics) IncrementSchedulesCreated() {
	if m == nil {
		return
	}
	m.SchedulesCreated.Inc()
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m == nil {
		return
	}
	m.ScheduleTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncrementRegistration(outcome string) {
	if m == nil {
		return
	}
	m.CheckpointRegistrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVisitsCompleted() {
	if m == nil {
		return
	}
	m.VisitsCompleted.Inc()
}

// ObserveRegister records a RegisterCheckpoint duration. Call with time.Now() at the start.
func (m *Metrics) ObserveRegister(start time.Time) {
	if m == nil {
		return
	}
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveEvaluate(start time.Time) {
	if m == nil {
		return
	}
	m.EvaluateDuration.Observe(time.Since(start).Seconds())
}

// ObserveScan records a successful scan and the number of overdue visits it found.
func (m *Metrics) ObserveScan(start time.Time, overdue int) {
	if m == nil {
		return
	}
	m.OverdueScanDuration.Observe(time.Since(start).Seconds())
	m.OverdueVisits.Set(float64(overdue))
}

func (m *Metrics) IncrementScanFailures() {
	if m == nil {
		return
	}
	m.OverdueScanFailures.Inc()
}
