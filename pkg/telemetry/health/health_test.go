package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckReadinessAllHealthy(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("store", func(ctx context.Context) error { return nil })
	c.RegisterCheck("agent", func(ctx context.Context) error { return nil })

	status := c.CheckReadiness(context.Background())
	if !status.Healthy {
		t.Error("expected healthy status")
	}
	if status.Checks["store"] != "ok" || status.Checks["agent"] != "ok" {
		t.Errorf("checks = %v", status.Checks)
	}
}

func TestCheckReadinessFailure(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("store", func(ctx context.Context) error {
		return fmt.Errorf("database locked")
	})
	c.RegisterCheck("agent", func(ctx context.Context) error { return nil })

	status := c.CheckReadiness(context.Background())
	if status.Healthy {
		t.Error("expected unhealthy status")
	}
	if status.Checks["store"] != "database locked" {
		t.Errorf("store check = %q", status.Checks["store"])
	}
}

func TestCheckTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	status := c.CheckReadiness(context.Background())
	if status.Healthy {
		t.Error("expected timeout to mark check unhealthy")
	}
}

func TestLivenessHandler(t *testing.T) {
	c := New(time.Second)

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("store", func(ctx context.Context) error {
		return fmt.Errorf("not ready")
	})

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if status.Healthy {
		t.Error("body reports healthy")
	}
}
