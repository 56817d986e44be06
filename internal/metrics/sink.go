// Package metrics holds the process-wide invocation counters, exposed in the
// Prometheus text exposition format for an external scraper.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Sink records per-invocation counters keyed by (network, operation).
// Counters are monotonic and atomically incremented; there is no reset short
// of a process restart. Each Sink owns its own Prometheus registry so tests
// stay hermetic.
type Sink struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewSink creates a sink with its collectors registered.
func NewSink() *Sink {
	s := &Sink{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainmcp",
			Subsystem: "tool",
			Name:      "invocations_total",
			Help:      "Tool invocations dispatched, by network and operation.",
		}, []string{"network", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainmcp",
			Subsystem: "tool",
			Name:      "errors_total",
			Help:      "Tool invocations that returned an error envelope.",
		}, []string{"network", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chainmcp",
			Subsystem: "tool",
			Name:      "duration_seconds",
			Help:      "Tool invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"network", "operation"}),
	}
	s.registry.MustRegister(s.invocations, s.failures, s.duration)
	return s
}

// RecordInvocation counts one dispatched invocation. The invocation counter
// moves exactly once per call regardless of outcome; failed outcomes
// additionally move the error counter.
func (s *Sink) RecordInvocation(network, operation string, seconds float64, failed bool) {
	s.invocations.WithLabelValues(network, operation).Inc()
	s.duration.WithLabelValues(network, operation).Observe(seconds)
	if failed {
		s.failures.WithLabelValues(network, operation).Inc()
	}
}

// InvocationsTotal reads the current invocation counter for a
// (network, operation) pair. Diagnostics and tests only; the external
// contract is the scrape endpoint.
func (s *Sink) InvocationsTotal(network, operation string) float64 {
	var m dto.Metric
	if err := s.invocations.WithLabelValues(network, operation).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Handler returns the scrape endpoint for this sink's registry.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
