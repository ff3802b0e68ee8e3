package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		status   int
		checks   map[string]string
	}{
		{"all healthy", ok, ok, http.StatusOK, map[string]string{"postgres": "ok", "redis": "ok"}},
		{"redis disabled", ok, nil, http.StatusOK, map[string]string{"postgres": "ok", "redis": "disabled"}},
		{"postgres down", down, ok, http.StatusServiceUnavailable, map[string]string{"postgres": "down", "redis": "ok"}},
		{"redis down", ok, down, http.StatusServiceUnavailable, map[string]string{"postgres": "ok", "redis": "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.postgres, tt.redis).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}

			var body readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for name, want := range tt.checks {
				if got := body.Checks[name].Status; got != want {
					t.Fatalf("expected %s=%s, got %+v", name, want, body.Checks)
				}
			}
			if tt.status != http.StatusOK && body.Status != "unavailable" {
				t.Fatalf("expected unavailable, got %q", body.Status)
			}
		})
	}
}

func TestHealthHandler_ReadinessReportsError(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("too many clients") })

	rec := httptest.NewRecorder()
	NewHealthHandler(down, nil).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["postgres"].Error != "too many clients" {
		t.Fatalf("expected the ping error, got %+v", body.Checks["postgres"])
	}
}

func TestHealthHandler_ReadinessHonoursDeadline(t *testing.T) {
	hang := PingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	NewHealthHandler(hang, nil).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil).WithContext(ctx))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the ping is cancelled, got %d", rec.Code)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	NewHealthHandler(down, nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on postgres, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["uptime"] == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}
