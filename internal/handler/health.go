package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

const readinessProbeTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names a dependency probed by /readyz.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks  []HealthCheck
	clock   clockwork.Clock
	started time.Time
}

// NewHealthHandler creates a new HealthHandler. Checks with a nil Checker
// are reported as "not configured" and do not fail readiness.
func NewHealthHandler(clock clockwork.Clock, checks ...HealthCheck) *HealthHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthHandler{
		checks:  checks,
		clock:   clock,
		started: clock.Now(),
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime float64           `json:"uptime_seconds,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: h.clock.Since(h.started).Seconds(),
	})
}

// Readyz is a readiness probe endpoint.
// It returns 200 only if every configured dependency answers a ping.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessProbeTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	healthy := true

	for _, hc := range h.checks {
		if hc.Checker == nil {
			checks[hc.Name] = "not configured"
			continue
		}
		if err := hc.Checker.Ping(ctx); err != nil {
			checks[hc.Name] = "error: " + err.Error()
			healthy = false
			continue
		}
		checks[hc.Name] = "ok"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
