package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"psychaid/backend/internal/identity/service"
	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/security"
	"psychaid/backend/internal/server/middleware"
	sessionrepo "psychaid/backend/internal/session/repository"
	userrepo "psychaid/backend/internal/user/repository"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logging.Discard()
	svc := service.NewAuthService(userrepo.NewMemoryRepository(), sessionrepo.NewMemoryRevocationStore(),
		security.NewHasher(bcrypt.MinCost), security.NewTestTokenProvider(), validation.New(), log)
	h := NewAuthHandler(svc, log)
	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(svc, log))
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
		r.Delete("/auth/me", h.DeleteMe)
		r.Put("/auth/password", h.ChangePassword)
		r.Get("/auth/children", h.Children)
	})
	return r
}

func request(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTokens(t *testing.T, rec *httptest.ResponseRecorder) TokenResponse {
	t.Helper()
	var out TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v (status %d)", err, rec.Code)
	}
	return out
}

func signupBody(email, role, child string) map[string]string {
	return map[string]string{"email": email, "password": "pw123456", "name": "Sam", "last_name": "Lee", "user_type": role, "child_email": child}
}

func TestAuthFlow(t *testing.T) {
	h := newRouter(t)

	rec := request(h, http.MethodPost, "/auth/signup", "", signupBody("c@x.com", "student", ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup student = %d %s", rec.Code, rec.Body)
	}
	rec = request(h, http.MethodPost, "/auth/signup", "", signupBody("p@x.com", "parent", "c@x.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup parent = %d %s", rec.Code, rec.Body)
	}
	parent := decodeTokens(t, rec)
	if parent.TokenType != "bearer" || parent.RefreshToken == "" || parent.User == nil || len(parent.User.LinkedChildren) != 1 {
		t.Fatalf("parent tokens = %+v", parent)
	}

	rec = request(h, http.MethodGet, "/auth/children", parent.AccessToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "c@x.com") {
		t.Errorf("children = %d %s", rec.Code, rec.Body)
	}

	rec = request(h, http.MethodPost, "/auth/login", "", map[string]string{"email": "P@X.com", "password": "pw123456", "user_type": "parent"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body)
	}
	rec = request(h, http.MethodPost, "/auth/login", "", map[string]string{"email": "p@x.com", "password": "pw123456", "user_type": "student"})
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "invalid_credentials") {
		t.Errorf("wrong role login = %d %s", rec.Code, rec.Body)
	}

	rec = request(h, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": parent.RefreshToken})
	refreshed := decodeTokens(t, rec)
	if rec.Code != http.StatusOK || refreshed.AccessToken == "" || refreshed.RefreshToken != "" {
		t.Fatalf("refresh = %d %+v", rec.Code, refreshed)
	}

	if rec := request(h, http.MethodPost, "/auth/logout", parent.AccessToken, map[string]string{"refresh_token": parent.RefreshToken}); rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d %s", rec.Code, rec.Body)
	}
	if rec := request(h, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": parent.RefreshToken}); rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout = %d, want 401", rec.Code)
	}
}

func TestSignup_Errors(t *testing.T) {
	h := newRouter(t)
	request(h, http.MethodPost, "/auth/signup", "", signupBody("c@x.com", "student", ""))

	cases := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"duplicate email", signupBody("C@x.com", "student", ""), http.StatusConflict, middleware.CodeEmailTaken},
		{"missing child", signupBody("p@x.com", "parent", "ghost@x.com"), http.StatusNotFound, middleware.CodeChildNotFound},
		{"bad role", signupBody("q@x.com", "admin", ""), http.StatusBadRequest, middleware.CodeValidation},
		{"not json", "nope", http.StatusBadRequest, middleware.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := request(h, http.MethodPost, "/auth/signup", "", tc.body)
			if rec.Code != tc.status || !strings.Contains(rec.Body.String(), `"error":"`+tc.code+`"`) {
				t.Errorf("status = %d body = %s, want %d %s", rec.Code, rec.Body, tc.status, tc.code)
			}
		})
	}
}

func TestAccountOperations(t *testing.T) {
	h := newRouter(t)
	rec := request(h, http.MethodPost, "/auth/signup", "", signupBody("s@x.com", "student", ""))
	tok := decodeTokens(t, rec)

	if rec := request(h, http.MethodGet, "/auth/me", tok.AccessToken, nil); rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "password") {
		t.Errorf("me = %d %s", rec.Code, rec.Body)
	}
	if rec := request(h, http.MethodGet, "/auth/children", tok.AccessToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("student children = %d, want 403", rec.Code)
	}
	rec = request(h, http.MethodPut, "/auth/password", tok.AccessToken, map[string]string{"current_password": "wrong-one", "new_password": "newpass123"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), middleware.CodeIncorrectPassword) {
		t.Errorf("wrong current password = %d %s", rec.Code, rec.Body)
	}
	if rec := request(h, http.MethodPut, "/auth/password", tok.AccessToken, map[string]string{"current_password": "pw123456", "new_password": "newpass123"}); rec.Code != http.StatusNoContent {
		t.Errorf("change password = %d %s", rec.Code, rec.Body)
	}
	if rec := request(h, http.MethodDelete, "/auth/me", tok.AccessToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := request(h, http.MethodGet, "/auth/me", tok.AccessToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("me after delete = %d, want 401", rec.Code)
	}
}
