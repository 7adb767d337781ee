package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lcs_admin"

// Metrics holds the prometheus collectors for the console API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	jobTransitions  *prometheus.CounterVec
	assetOps        *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
			[]string{"route", "method"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_errors_total", Help: "HTTP errors by domain code"},
			[]string{"route", "method", "code"},
		),
		jobTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "job_transitions_total", Help: "Job status transitions by target status"},
			[]string{"status"},
		),
		assetOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "asset_operations_total", Help: "Object store operations by outcome"},
			[]string{"op", "outcome"},
		),
		gateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "gate_decisions_total", Help: "Identity gate decisions"},
			[]string{"decision"},
		),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.errorTotal,
		m.jobTransitions,
		m.assetOps,
		m.gateDecisions,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(route, method, code).Inc()
}

// RecordJobTransition counts a status change.
func (m *Metrics) RecordJobTransition(status string) {
	if m == nil {
		return
	}
	m.jobTransitions.WithLabelValues(status).Inc()
}

// RecordAsset counts an upload or delete against the object store.
func (m *Metrics) RecordAsset(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.assetOps.WithLabelValues(op, outcome).Inc()
}

// RecordGate counts an identity gate decision.
func (m *Metrics) RecordGate(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(decision).Inc()
}
