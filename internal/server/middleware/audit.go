package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"psychaid/backend/internal/audit"
)

// Audit records an audit event after each request whose route maps to an
// authentication action or that was denied with 403. Recording is
// best-effort and never changes the response. A nil logger disables it.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := wrapWriter(w)
			next.ServeHTTP(rec, r)
			if logger == nil {
				return
			}
			pattern := routePattern(r)
			ar := audit.ParseRoute(r.Method, pattern, rec.status)
			if !audit.IsAudited(ar.Action) {
				return
			}
			userID, _ := GetUserID(r.Context())
			logger.LogEvent(r.Context(), audit.Event{
				UserID:   userID,
				Action:   ar.Action,
				Resource: ar.Resource,
				Status:   rec.status,
				IP:       ClientIP(r),
				Metadata: r.Method + " " + pattern,
			})
		})
	}
}

// UnmatchedRoute labels requests that matched no route, so metrics and spans
// never carry a raw client path.
const UnmatchedRoute = "unmatched"

// routePattern returns the matched chi route pattern, or UnmatchedRoute.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return UnmatchedRoute
}
