package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestChecker_CheckReadiness_AllHealthy tests aggregation when every check
// passes.
func TestChecker_CheckReadiness_AllHealthy(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("database", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("catalog", func(ctx context.Context) error { return nil })

	status := checker.CheckReadiness(context.Background())

	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("Checks = %d entries, want 2", len(status.Checks))
	}
	for name, result := range status.Checks {
		if result.Status != "ok" {
			t.Errorf("check %s status = %q, want ok", name, result.Status)
		}
	}
}

// TestChecker_CheckReadiness_Degraded tests aggregation with one failure.
func TestChecker_CheckReadiness_Degraded(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("database", func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	checker.RegisterCheck("catalog", func(ctx context.Context) error { return nil })

	status := checker.CheckReadiness(context.Background())

	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	if status.Checks["database"].Status != "unhealthy" {
		t.Errorf("database check = %+v, want unhealthy", status.Checks["database"])
	}
	if status.Checks["database"].Message != "connection refused" {
		t.Errorf("database message = %q", status.Checks["database"].Message)
	}
}

// TestChecker_CheckReadiness_Timeout verifies a hung check turns unhealthy
// instead of blocking readiness forever.
func TestChecker_CheckReadiness_Timeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())
	elapsed := time.Since(start)

	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	if elapsed > time.Second {
		t.Errorf("readiness took %v, should be bounded by check timeout", elapsed)
	}
}

// TestChecker_NoChecks verifies readiness with nothing registered.
func TestChecker_NoChecks(t *testing.T) {
	status := New(0).CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
}

// TestHandlers tests the HTTP endpoints.
func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("database", func(ctx context.Context) error {
		return errors.New("down")
	})

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready = %d, want 503 when degraded", rec.Code)
	}

	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodPost, "/ready", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ready = %d, want 405", rec.Code)
	}
}
