// Package handler exposes a user's own audit trail over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/audit/domain"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/server/middleware"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Reader lists a user's audit entries, newest first.
type Reader interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.AuditLog, error)
}

// Event is the JSON view of an audit entry.
type Event struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	reader Reader
	log    logrus.FieldLogger
}

func NewHandler(reader Reader, log logrus.FieldLogger) *Handler {
	return &Handler{reader: reader, log: log}
}

// Events handles GET /auth/audit?limit=&offset=. Expects RequireAuth.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	limit, err := middleware.QueryInt(r, "limit", DefaultLimit)
	if err == nil && (limit < 1 || limit > MaxLimit) {
		err = validation.Field("limit", "limit must be between 1 and 100")
	}
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	offset, err := middleware.QueryInt(r, "offset", 0)
	if err == nil && offset < 0 {
		err = validation.Field("offset", "offset must not be negative")
	}
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	logs, err := h.reader.ListByUser(r.Context(), caller.ID, limit, offset)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	out := make([]Event, 0, len(logs))
	for _, l := range logs {
		out = append(out, Event{Action: l.Action, Resource: l.Resource, Status: l.Status, IP: l.IP, Timestamp: l.CreatedAt})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}
