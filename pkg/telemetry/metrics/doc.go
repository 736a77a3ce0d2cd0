// Package metrics provides Prometheus metrics for the security analysis
// core: WAF run counts and durations, evaluation faults, and reported
// attacks.
//
// Metrics are registered against an explicit prometheus.Registry so tests
// and embedders control registration; Handler exposes a registry over HTTP.
package metrics
