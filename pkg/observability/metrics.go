package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Publish outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeInFlight   = "in_flight"
	OutcomeFailure    = "failure"
	OutcomeApplied    = "applied"
	OutcomeDiscarded  = "discarded"
	OutcomeReadFailed = "read_failed"
)

// Metrics groups the collectors recorded by the editor.
type Metrics struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	publishDuration prometheus.Histogram
	mediaIngests    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime collectors, in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_tree_mutations_total",
				Help: "Course tree mutations applied by editing sessions",
			},
			[]string{"op"},
		),
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_publish_total",
				Help: "Publish attempts by outcome",
			},
			[]string{"outcome"},
		),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "syllabus_publish_duration_seconds",
				Help:    "Duration of course repository create calls",
				Buckets: prometheus.DefBuckets,
			},
		),
		mediaIngests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_media_ingest_total",
				Help: "Image ingestions by outcome",
			},
			[]string{"outcome"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "syllabus_active_sessions",
				Help: "Editing sessions currently open",
			},
		),
	}

	m.registry.MustRegister(
		m.mutations,
		m.publishes,
		m.publishDuration,
		m.mediaIngests,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Mutation records a tree operation.
func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

// Publish records a publish attempt. d is only observed for attempts that
// reached the repository.
func (m *Metrics) Publish(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeFailure {
		m.publishDuration.Observe(d.Seconds())
	}
}

// MediaIngest records the outcome of an image ingestion.
func (m *Metrics) MediaIngest(outcome string) {
	if m == nil {
		return
	}
	m.mediaIngests.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
