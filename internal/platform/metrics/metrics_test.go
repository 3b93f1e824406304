package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.handler == nil {
		t.Error("Metrics.handler should be initialized")
	}
}

func TestMetrics_ComputationLifecycle(t *testing.T) {
	m := NewMetrics()

	m.ComputationSubmitted()
	m.ComputationSubmitted()
	m.ComputationCompleted()
	m.ComputationFailed()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)

	body := rec.Body.String()

	checks := map[string]string{
		"submitted counter": "rootcalc_computations_submitted_total 2",
		"completed counter": "rootcalc_computations_completed_total 1",
		"failed counter":    "rootcalc_computations_failed_total 1",
		"in-flight gauge":   "rootcalc_computations_in_flight 0",
	}

	for name, want := range checks {
		if !strings.Contains(body, want) {
			t.Errorf("%s: metrics output should contain %q", name, want)
		}
	}
}

func TestMetrics_WritePrometheusIncludesRuntimeMetrics(t *testing.T) {
	m := NewMetrics()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)

	if !strings.Contains(rec.Body.String(), "go_") {
		t.Error("metrics output should contain Go runtime metrics")
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not interfere; constructing both should not panic.
	a := NewMetrics()
	b := NewMetrics()

	a.ComputationSubmitted()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	b.WritePrometheus(rec, req)

	if !strings.Contains(rec.Body.String(), "rootcalc_computations_submitted_total 0") {
		t.Error("second instance should start from zero")
	}
}
