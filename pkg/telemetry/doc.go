// Package telemetry groups the observability concerns of rampart.
//
//   - logging: structured slog setup and credential redaction
//   - metrics: Prometheus metrics for rule evaluations
//   - health: liveness and readiness endpoints
package telemetry
