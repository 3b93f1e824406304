// Package metrics exposes Prometheus instrumentation for the computation
// pipeline: submission and outcome counters plus an in-flight gauge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the computation pipeline.
// Each Metrics value carries its own registry so tests can create
// independent instances without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	computationsSubmitted prometheus.Counter
	computationsCompleted prometheus.Counter
	computationsFailed    prometheus.Counter
	computationsInFlight  prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all collectors registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		computationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rootcalc_computations_submitted_total",
			Help: "Total number of computations accepted for processing.",
		}),
		computationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rootcalc_computations_completed_total",
			Help: "Total number of computations that produced a root.",
		}),
		computationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rootcalc_computations_failed_total",
			Help: "Total number of computations that ended in failure.",
		}),
		computationsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootcalc_computations_in_flight",
			Help: "Number of computations currently being processed.",
		}),
	}

	registry.MustRegister(
		m.computationsSubmitted,
		m.computationsCompleted,
		m.computationsFailed,
		m.computationsInFlight,
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// ComputationSubmitted records a newly accepted computation.
func (m *Metrics) ComputationSubmitted() {
	m.computationsSubmitted.Inc()
	m.computationsInFlight.Inc()
}

// ComputationCompleted records a computation that produced a root.
func (m *Metrics) ComputationCompleted() {
	m.computationsCompleted.Inc()
	m.computationsInFlight.Dec()
}

// ComputationFailed records a computation that ended in failure.
func (m *Metrics) ComputationFailed() {
	m.computationsFailed.Inc()
	m.computationsInFlight.Dec()
}

// WritePrometheus serves the metrics in Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
