package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/platform/rbac"
	"psychaid/backend/internal/platform/validation"
)

// RequireTargetAccess runs the access-control gate for the user id in the
// route parameter param. It must be mounted after RequireAuth on every route
// that names another user's id. The id is canonicalized the same way token
// subjects are; handlers read it back with TargetUserID.
func RequireTargetAccess(gate *rbac.Gate, param string, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, _ := GetCaller(r.Context())
			id, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				WriteServiceError(w, r, log, validation.Field(param, param+" must be a valid user id"))
				return
			}
			target := id.String()
			if err := gate.Authorize(r.Context(), caller, target); err != nil {
				WriteServiceError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), targetKey, target)))
		})
	}
}

// TargetUserID returns the user id approved by RequireTargetAccess, or the raw
// route parameter param when the gate did not run.
func TargetUserID(r *http.Request, param string) string {
	if id, ok := r.Context().Value(targetKey).(string); ok && id != "" {
		return id
	}
	return chi.URLParam(r, param)
}
