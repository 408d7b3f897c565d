// Package handler exposes mood check-ins over HTTP.
package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/mood/service"
	"psychaid/backend/internal/server/middleware"
)

// Handler serves the /mood routes. Every method expects RequireAuth to have
// run; ChildHistory also expects the access gate on {childID}.
type Handler struct {
	svc *service.MoodService
	log logrus.FieldLogger
}

// NewHandler returns a mood Handler.
func NewHandler(svc *service.MoodService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Record handles POST /mood.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in service.RecordInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	e, err := h.svc.Record(r.Context(), caller.ID, in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, e)
}

// History handles GET /mood/history?limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	limit, err := middleware.QueryInt(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	entries, err := h.svc.History(r.Context(), caller.ID, limit)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Latest handles GET /mood/latest.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	e, err := h.svc.Latest(r.Context(), caller.ID)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"entry": e})
}

// Clear handles DELETE /mood/history.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	n, err := h.svc.ClearHistory(r.Context(), caller.ID)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ChildHistory handles GET /mood/child/{childID}.
func (h *Handler) ChildHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ChildHistory(r.Context(), middleware.TargetUserID(r, "childID"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
