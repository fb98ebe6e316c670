// Package metrics exposes Prometheus collectors for the decision pipeline
// and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing, which keeps tests and tooling free of registry setup.
type Metrics struct {
	decisions          *prometheus.CounterVec
	advisoryOutcomes   *prometheus.CounterVec
	emergencyResponses prometheus.Counter
	rateLimitRejects   *prometheus.CounterVec
	evalDuration       *prometheus.HistogramVec
	advisoryDuration   prometheus.Histogram
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWith(nil)
}

// NewWith registers the collectors on the given registerer. A nil registerer
// falls back to the default registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisio_decisions_total",
				Help: "Total triage decisions by decision, tier and terminal flag",
			},
			[]string{"decision", "tier", "terminal"},
		),
		advisoryOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisio_advisory_requests_total",
				Help: "Advisory capability calls by result (ok or failed)",
			},
			[]string{"result"},
		),
		emergencyResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "decisio_emergency_responses_total",
				Help: "Responses produced by the internal fault trap",
			},
		),
		rateLimitRejects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisio_rate_limit_rejections_total",
				Help: "Requests rejected by the rate limiter, by tier and window",
			},
			[]string{"tier", "window"},
		),
		evalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decisio_evaluation_duration_seconds",
				Help:    "End to end pipeline evaluation latency",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"terminal"},
		),
		advisoryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "decisio_advisory_duration_seconds",
				Help:    "Advisory capability call latency",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
	}
}

// RecordDecision counts one completed evaluation.
func (m *Metrics) RecordDecision(decision, tier string, terminal bool) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, tier, boolLabel(terminal)).Inc()
}

// RecordAdvisory counts one advisory call.
func (m *Metrics) RecordAdvisory(failed bool, seconds float64) {
	if m == nil {
		return
	}
	result := "ok"
	if failed {
		result = "failed"
	}
	m.advisoryOutcomes.WithLabelValues(result).Inc()
	m.advisoryDuration.Observe(seconds)
}

// RecordEmergency counts one trapped internal fault.
func (m *Metrics) RecordEmergency() {
	if m == nil {
		return
	}
	m.emergencyResponses.Inc()
}

// RecordRateLimitReject counts one 429 by tier and exceeded window.
func (m *Metrics) RecordRateLimitReject(tier, window string) {
	if m == nil {
		return
	}
	m.rateLimitRejects.WithLabelValues(tier, window).Inc()
}

// RecordEvaluation observes one pipeline evaluation duration.
func (m *Metrics) RecordEvaluation(terminal bool, seconds float64) {
	if m == nil {
		return
	}
	m.evalDuration.WithLabelValues(boolLabel(terminal)).Observe(seconds)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
