package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWAFMetrics_RecordRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWAFMetrics("rampart", registry)

	m.RecordRun(OutcomeOK, 50*time.Microsecond)
	m.RecordRun(OutcomeOK, 70*time.Microsecond)
	m.RecordRun(OutcomeFault, 10*time.Microsecond)

	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("runs_total{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(OutcomeFault)); got != 1 {
		t.Errorf("runs_total{outcome=fault} = %v, want 1", got)
	}
}

func TestWAFMetrics_RecordAttack(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWAFMetrics("rampart", registry)

	m.RecordAttack("block")
	m.RecordAttack("")

	if got := testutil.ToFloat64(m.attacksTotal.WithLabelValues("block")); got != 1 {
		t.Errorf("attacks_total{action=block} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attacksTotal.WithLabelValues("monitor")); got != 1 {
		t.Errorf("attacks_total{action=monitor} = %v, want 1 (empty action counts as monitor)", got)
	}
}

func TestWAFMetrics_NilSafe(t *testing.T) {
	var m *WAFMetrics
	// Must not panic.
	m.RecordRun(OutcomeOK, time.Microsecond)
	m.RecordAttack("block")
	m.RecordContextCreation("cached")
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWAFMetrics("rampart", registry)
	m.RecordRun(OutcomeOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rampart_waf_runs_total") {
		t.Error("metrics output missing rampart_waf_runs_total")
	}
}
