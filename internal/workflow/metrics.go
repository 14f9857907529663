package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the orchestrator's Prometheus collectors.
type Metrics struct {
	submitted prometheus.Counter
	cancelled prometheus.Counter
	outcomes  *prometheus.CounterVec
	pending   prometheus.Gauge
	duration  prometheus.Histogram
}

// NewMetrics builds collectors and registers them on reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tubelift",
			Subsystem: "queue",
			Name:      "jobs_submitted_total",
			Help:      "Total number of submitted jobs",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tubelift",
			Subsystem: "queue",
			Name:      "jobs_cancelled_total",
			Help:      "Total number of pending jobs removed by cancellation",
		}),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tubelift",
				Subsystem: "pipeline",
				Name:      "outcomes_total",
				Help:      "Total number of finished jobs by outcome",
			},
			[]string{"outcome"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tubelift",
			Subsystem: "queue",
			Name:      "pending_jobs",
			Help:      "Number of jobs waiting in the queue",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tubelift",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Time spent processing one job",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submitted, m.cancelled, m.outcomes, m.pending, m.duration)
	}
	return m
}

func (m *Metrics) jobSubmitted(pending int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.pending.Set(float64(pending))
}

func (m *Metrics) jobsCancelled(n, pending int) {
	if m == nil {
		return
	}
	m.cancelled.Add(float64(n))
	m.pending.Set(float64(pending))
}

func (m *Metrics) jobStarted(pending int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(pending))
}

func (m *Metrics) jobFinished(kind OutcomeKind, seconds float64) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind.String()).Inc()
	m.duration.Observe(seconds)
}
