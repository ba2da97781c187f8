package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything whose liveness can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dependency is a named health check target.
type dependency struct {
	name   string
	pinger Pinger
}

// HealthHandler manages the liveness and readiness endpoints.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler creates a HealthHandler. Register dependencies with
// AddCheck; a handler without checks reports ready unconditionally.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// AddCheck registers a named dependency for readiness probing.
// A nil pinger is reported as "not configured" and never fails the probe.
func (h *HealthHandler) AddCheck(name string, p Pinger) {
	h.deps = append(h.deps, dependency{name: name, pinger: p})
}

// HealthResponse is the body of both probe endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe. It answers 200 whenever the process
// is serving, with no dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is the readiness probe. All registered dependencies must
// answer a ping within the timeout for a 200.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	healthy := true

	for _, dep := range h.deps {
		if dep.pinger == nil {
			checks[dep.name] = "not configured"
			continue
		}
		if err := dep.pinger.Ping(ctx); err != nil {
			checks[dep.name] = "error: " + err.Error()
			healthy = false
			continue
		}
		checks[dep.name] = "ok"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{Status: status, Checks: checks})
}
