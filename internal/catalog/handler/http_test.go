package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"psychaid/backend/internal/catalog/service"
	"psychaid/backend/internal/platform/logging"
)

func TestCatalogRoutes(t *testing.T) {
	h := NewHandler(service.NewCatalogService(), logging.Discard())
	r := chi.NewRouter()
	r.Get("/resources", h.Resources)
	r.Get("/resources/{id}", h.Resource)
	r.Get("/therapeutic-exercises", h.TherapeuticExercises)

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/resources?type=meditation", http.StatusOK, "Basic Meditation"},
		{"/resources/2", http.StatusOK, "Deep Breathing"},
		{"/resources/7", http.StatusNotFound, `"error":"not_found"`},
		{"/therapeutic-exercises", http.StatusOK, "Box Breathing"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%s = %d %s", tc.path, rec.Code, rec.Body)
		}
	}
}
