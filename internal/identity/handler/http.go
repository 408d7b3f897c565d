// Package handler exposes signup, login, token refresh and the account
// operations over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/identity/service"
	"psychaid/backend/internal/server/middleware"
	userdomain "psychaid/backend/internal/user/domain"
)

// tokenType is the scheme clients put in the Authorization header.
const tokenType = "bearer"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"user_type"`
}

// RefreshRequest is the body of POST /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordRequest is the body of PUT /auth/password.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenResponse is returned by signup, login and refresh. Refresh omits the
// refresh token and user.
type TokenResponse struct {
	AccessToken      string              `json:"access_token"`
	RefreshToken     string              `json:"refresh_token,omitempty"`
	TokenType        string              `json:"token_type"`
	ExpiresAt        time.Time           `json:"expires_at"`
	RefreshExpiresAt *time.Time          `json:"refresh_expires_at,omitempty"`
	User             *userdomain.Summary `json:"user,omitempty"`
}

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	auth *service.AuthService
	log  logrus.FieldLogger
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(auth *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func tokenResponse(res *service.AuthResult) TokenResponse {
	out := TokenResponse{AccessToken: res.AccessToken, TokenType: tokenType, ExpiresAt: res.ExpiresAt}
	if res.RefreshToken != "" {
		out.RefreshToken = res.RefreshToken
		exp := res.RefreshExpiresAt
		out.RefreshExpiresAt = &exp
		u := res.User
		out.User = &u
	}
	return out
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.SetUserID(r.Context(), res.User.ID)
	middleware.WriteJSON(w, http.StatusCreated, tokenResponse(res))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	res, err := h.auth.Login(r.Context(), in.Email, in.Password, in.Role)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.SetUserID(r.Context(), res.User.ID)
	middleware.WriteJSON(w, http.StatusOK, tokenResponse(res))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in RefreshRequest
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	res, err := h.auth.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.SetUserID(r.Context(), res.User.ID)
	middleware.WriteJSON(w, http.StatusOK, tokenResponse(res))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in RefreshRequest
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	if err := h.auth.Logout(r.Context(), caller, in.RefreshToken); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, caller.Summary())
}

// DeleteMe handles DELETE /auth/me.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	if err := h.auth.DeleteAccount(r.Context(), caller.ID); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	var in PasswordRequest
	if err := middleware.DecodeJSON(r, &in); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), caller.ID, in.CurrentPassword, in.NewPassword); err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Children handles GET /auth/children.
func (h *AuthHandler) Children(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerOr401(w, r, h.log)
	if !ok {
		return
	}
	kids, err := h.auth.Children(r.Context(), caller)
	if err != nil {
		middleware.WriteServiceError(w, r, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"children": kids})
}
