// Package handler exposes exercises and achievements over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/achievement/service"
	"psychaid/backend/internal/server/middleware"
)

// Handler serves the /exercises and /achievements routes.
type Handler struct {
	svc *service.AchievementService
	log logrus.FieldLogger
}

// NewHandler returns an achievement Handler.
func NewHandler(svc *service.AchievementService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RecordExercise handles POST /exercises.
func (h *Handler) RecordExercise(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in service.ExerciseInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	res, err := h.svc.RecordExercise(r.Context(), caller.ID, in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, res)
}

// ListExercises handles GET /exercises.
func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	list, err := h.svc.ListExercises(r.Context(), caller.ID)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"exercises": list})
}

// CompleteExercise handles POST /exercises/{exerciseID}/complete.
func (h *Handler) CompleteExercise(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	res, err := h.svc.CompleteExercise(r.Context(), caller.ID, chi.URLParam(r, "exerciseID"))
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// Achievements handles GET /achievements.
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	h.writeAchievements(w, r, caller.ID)
}

// ChildAchievements handles GET /achievements/child/{childID}.
func (h *Handler) ChildAchievements(w http.ResponseWriter, r *http.Request) {
	h.writeAchievements(w, r, middleware.TargetUserID(r, "childID"))
}

func (h *Handler) writeAchievements(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.svc.Achievements(r.Context(), userID)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"achievements": list})
}
