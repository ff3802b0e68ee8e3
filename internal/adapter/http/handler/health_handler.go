package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type dependency struct {
	name   string
	pinger Pinger
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	deps    []dependency
	started time.Time
}

// NewHealthHandler checks postgres and, when configured, redis. A nil redis
// reports as disabled.
func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		deps:    []dependency{{"postgres", postgres}, {"redis", redis}},
		started: time.Now(),
	}
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Liveness only says the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Readiness pings every dependency in parallel and answers 503 if any
// configured one is unreachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		resp = readinessResponse{Status: "ready", Checks: make(map[string]CheckResult, len(h.deps))}
		g    errgroup.Group
	)
	for _, dep := range h.deps {
		g.Go(func() error {
			result := pingDependency(ctx, dep.pinger)

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[dep.name] = result
			if result.Status == "down" {
				resp.Status = "unavailable"
			}
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func pingDependency(ctx context.Context, p Pinger) CheckResult {
	if p == nil {
		return CheckResult{Status: "disabled"}
	}

	start := time.Now()
	err := p.Ping(ctx)
	result := CheckResult{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = "down"
		result.Error = err.Error()
	}
	return result
}
