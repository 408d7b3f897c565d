package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"psychaid/backend/internal/audit/domain"
	"psychaid/backend/internal/audit/repository"
	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/server/middleware"
	userdomain "psychaid/backend/internal/user/domain"
)

type failingReader struct{}

func (failingReader) ListByUser(context.Context, string, int, int) ([]*domain.AuditLog, error) {
	return nil, errors.New("db down")
}

func call(h *Handler, caller *userdomain.User, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if caller != nil {
		req = req.WithContext(middleware.WithCaller(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	return rec
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, a := range []string{"signup", "login", "access_denied"} {
		_ = repo.Create(ctx, &domain.AuditLog{ID: a, UserID: "u1", Action: a, Resource: "user", Status: 200, IP: "10.0.0.1", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.Create(ctx, &domain.AuditLog{ID: "other", UserID: "u2", Action: "login", CreatedAt: base})
	h := NewHandler(repo, logging.Discard())
	me := &userdomain.User{ID: "u1", Role: userdomain.RoleStudent}

	decode := func(rec *httptest.ResponseRecorder) []Event {
		t.Helper()
		var out struct {
			Events []Event `json:"events"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		return out.Events
	}

	rec := call(h, me, "/auth/audit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode(rec)
	if len(got) != 3 || got[0].Action != "access_denied" || got[2].Action != "signup" {
		t.Errorf("events = %+v", got)
	}

	got = decode(call(h, me, "/auth/audit?limit=1&offset=1"))
	if len(got) != 1 || got[0].Action != "login" {
		t.Errorf("page = %+v", got)
	}

	rec = call(h, &userdomain.User{ID: "nobody"}, "/auth/audit")
	if body := rec.Body.String(); rec.Code != http.StatusOK || body != "{\"events\":[]}\n" {
		t.Errorf("empty = %d %q", rec.Code, body)
	}
}

func TestEvents_Errors(t *testing.T) {
	h := NewHandler(repository.NewMemoryRepository(), logging.Discard())
	me := &userdomain.User{ID: "u1"}
	cases := map[string]int{
		"/auth/audit?limit=0":    http.StatusBadRequest,
		"/auth/audit?limit=500":  http.StatusBadRequest,
		"/auth/audit?limit=x":    http.StatusBadRequest,
		"/auth/audit?offset=-1":  http.StatusBadRequest,
		"/auth/audit?offset=abc": http.StatusBadRequest,
	}
	for path, want := range cases {
		if rec := call(h, me, path); rec.Code != want {
			t.Errorf("%s = %d, want %d", path, rec.Code, want)
		}
	}
	if rec := call(h, nil, "/auth/audit"); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", rec.Code)
	}
	if rec := call(NewHandler(failingReader{}, logging.Discard()), me, "/auth/audit"); rec.Code != http.StatusInternalServerError {
		t.Error("store failure not surfaced as 500")
	}
}
