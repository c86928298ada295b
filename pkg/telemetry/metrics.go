package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects deployment counters on a private registry so tests and
// embedders never collide with the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsStarted       prometheus.Counter
	RunsCompleted     *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	OperationsApplied *prometheus.CounterVec
	BatchFailures     *prometheus.CounterVec
}

// NewMetrics builds the metric set under the given namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of deploy runs started",
		}),
		RunsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Total number of deploy runs completed, by status",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of deploy runs",
			Buckets:   prometheus.DefBuckets,
		}),
		OperationsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_applied_total",
			Help:      "Remote operations applied, by section and kind",
		}, []string{"section", "kind"}),
		BatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failures_total",
			Help:      "Per-item failures recorded during stage batches, by stage",
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.RunsStarted,
		m.RunsCompleted,
		m.RunDuration,
		m.OperationsApplied,
		m.BatchFailures,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
