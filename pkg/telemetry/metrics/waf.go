package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded by RecordRun.
const (
	OutcomeOK    = "ok"
	OutcomeMatch = "match"
	OutcomeFault = "fault"
)

// WAFMetrics tracks metrics for WAF evaluations.
//
// Metrics:
//   - rampart_waf_runs_total: evaluations by outcome (ok, match, fault)
//   - rampart_waf_run_duration_seconds: evaluation wall time
//   - rampart_waf_attacks_total: reported attack events by action
//   - rampart_waf_context_creations_total: evaluation context creations by kind
type WAFMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	attacksTotal     *prometheus.CounterVec
	contextCreations *prometheus.CounterVec
}

// NewWAFMetrics creates and registers WAF metrics with the provided
// registry.
func NewWAFMetrics(namespace string, registry *prometheus.Registry) *WAFMetrics {
	if namespace == "" {
		namespace = "rampart"
	}

	m := &WAFMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "waf",
				Name:      "runs_total",
				Help:      "Total number of WAF evaluations",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "waf",
				Name:      "run_duration_seconds",
				Help:      "Wall time of WAF evaluations in seconds",
				// Evaluations run under a microsecond-scale budget.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		attacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "waf",
				Name:      "attacks_total",
				Help:      "Total number of reported attack events",
			},
			[]string{"action"},
		),

		contextCreations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "waf",
				Name:      "context_creations_total",
				Help:      "Total number of WAF evaluation contexts created",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.attacksTotal,
		m.contextCreations,
	)

	return m
}

// RecordRun records one WAF evaluation. All methods are nil-safe so
// callers can run without metrics wired.
func (m *WAFMetrics) RecordRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// RecordAttack records one reported attack event.
func (m *WAFMetrics) RecordAttack(action string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "monitor"
	}
	m.attacksTotal.WithLabelValues(action).Inc()
}

// RecordContextCreation records one evaluation context creation.
// kind is "cached" or "transient".
func (m *WAFMetrics) RecordContextCreation(kind string) {
	if m == nil {
		return
	}
	m.contextCreations.WithLabelValues(kind).Inc()
}
