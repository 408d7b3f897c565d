// Package handler serves the public resource catalog.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/catalog/service"
	"psychaid/backend/internal/server/middleware"
)

// Handler serves /resources and /therapeutic-exercises.
type Handler struct {
	svc *service.CatalogService
	log logrus.FieldLogger
}

// NewHandler returns a catalog Handler.
func NewHandler(svc *service.CatalogService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Resources handles GET /resources?type=.
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"resources": h.svc.Resources(r.URL.Query().Get("type"))})
}

// Resource handles GET /resources/{id}.
func (h *Handler) Resource(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resource(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// TherapeuticExercises handles GET /therapeutic-exercises.
func (h *Handler) TherapeuticExercises(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"exercises": h.svc.TherapeuticExercises()})
}
