package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc reports the health of one component. It returns nil when the
// component is healthy.
type CheckFunc func(ctx context.Context) error

// Status is the aggregated result of a readiness evaluation.
type Status struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Checker runs registered component checks with a per-check timeout.
type Checker struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		timeout: timeout,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds or replaces a named component check.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// CheckReadiness runs every registered check and aggregates the results.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := Status{Healthy: true, Checks: make(map[string]string, len(checks))}
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			status.Healthy = false
			status.Checks[name] = err.Error()
		} else {
			status.Checks[name] = "ok"
		}
	}
	return status
}

// LivenessHandler reports whether the process is running. It never fails.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Status{Healthy: true})
	}
}

// ReadinessHandler runs the registered checks and returns 503 when any
// component is unhealthy.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
