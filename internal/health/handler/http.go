package handler

import (
	"net/http"

	"psychaid/backend/internal/health"
	"psychaid/backend/internal/server/middleware"
)

// HTTP serves the liveness and readiness probes.
type HTTP struct {
	checker *health.Checker
}

// NewHTTP returns the probe handlers backed by checker.
func NewHTTP(checker *health.Checker) *HTTP {
	return &HTTP{checker: checker}
}

// Liveness handles GET /healthz. It never touches dependencies.
func (h *HTTP) Liveness(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": health.StatusOK})
}

// Readiness handles GET /readyz: 200 when every check passes, else 503.
func (h *HTTP) Readiness(w http.ResponseWriter, r *http.Request) {
	rep := h.checker.Check(r.Context())
	status := http.StatusOK
	if !rep.Ready() {
		status = http.StatusServiceUnavailable
	}
	middleware.WriteJSON(w, status, rep)
}
