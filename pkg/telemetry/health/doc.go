// Package health exposes liveness and readiness endpoints.
//
// Liveness answers "is the process running" and always succeeds. Readiness
// runs registered component checks (event store, inspection agent) and
// fails with 503 when any of them report a problem.
package health
