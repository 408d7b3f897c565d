// Package handler exposes the support chat over HTTP.
package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/chat/service"
	"psychaid/backend/internal/server/middleware"
)

// Handler serves the /chat routes.
type Handler struct {
	svc *service.ChatService
	log logrus.FieldLogger
}

// NewHandler returns a chat Handler.
func NewHandler(svc *service.ChatService, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in service.ChatInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	reply, err := h.svc.Reply(r.Context(), caller, in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, reply)
}

// Public handles POST /chat/public.
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	var in service.ChatInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	reply, err := h.svc.PublicReply(r.Context(), in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, reply)
}

// History handles GET /chat/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	msgs, err := h.svc.History(r.Context(), caller.ID)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

// Clear handles DELETE /chat/history.
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
