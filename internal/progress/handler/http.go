// Package handler exposes progress tracking over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/progress/service"
	"psychaid/backend/internal/server/middleware"
)

// Handler serves the /progress routes.
type Handler struct {
	svc *service.ProgressService
	log logrus.FieldLogger
}

// NewHandler returns a progress Handler.
func NewHandler(svc *service.ProgressService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Save handles POST /progress.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in service.SaveInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	e, err := h.svc.Save(r.Context(), caller.ID, in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, e)
}

// Stats handles GET /progress?category=.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	st, err := h.svc.Stats(r.Context(), caller.ID, r.URL.Query().Get("category"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}

// CategoryStats handles GET /progress/category/{category}.
func (h *Handler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	st, err := h.svc.CategoryStats(r.Context(), caller.ID, chi.URLParam(r, "category"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}

// ChildSummary handles GET /progress/child/{childID}.
func (h *Handler) ChildSummary(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ChildSummary(r.Context(), middleware.TargetUserID(r, "childID"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}

// ChildCategory handles GET /progress/child/{childID}/category/{category}.
func (h *Handler) ChildCategory(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ChildCategorySummary(r.Context(), middleware.TargetUserID(r, "childID"), chi.URLParam(r, "category"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}
