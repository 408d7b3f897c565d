package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/security"
	userdomain "psychaid/backend/internal/user/domain"
)

const bearerPrefix = "bearer "

// Authenticator verifies an access token and resolves its subject.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*userdomain.User, error)
}

// RequireAuth validates the Bearer access token, resolves the caller and
// stores it in the request context. Requests without a resolvable caller
// never reach next.
func RequireAuth(auth Authenticator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				WriteServiceError(w, r, log, security.ErrTokenMissing)
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				WriteServiceError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), user)))
		})
	}
}

// BearerToken returns the token from an Authorization header value, or "" if
// missing or not a Bearer credential.
func BearerToken(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
