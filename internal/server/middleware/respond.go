package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	achievementdomain "psychaid/backend/internal/achievement/domain"
	catalogdomain "psychaid/backend/internal/catalog/domain"
	chatdomain "psychaid/backend/internal/chat/domain"
	identityservice "psychaid/backend/internal/identity/service"
	"psychaid/backend/internal/platform/rbac"
	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/security"
	userdomain "psychaid/backend/internal/user/domain"
	userrepo "psychaid/backend/internal/user/repository"
)

// Error codes shared across handlers.
const (
	CodeValidation          = "validation_error"
	CodeIncorrectPassword   = "incorrect_password"
	CodeEmailTaken          = "email_taken"
	CodeChildAlreadyLinked  = "child_already_linked"
	CodeChildNotFound       = "child_not_found"
	CodeNotFound            = "not_found"
	CodeChildNotStudent     = "child_not_student"
	CodeMissingToken        = "missing_token"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeInvalidRefreshToken = "invalid_refresh_token"
	CodeForbidden           = "forbidden"
	CodeInconsistent        = "inconsistent_linkage"
	CodeInternal            = "internal"
	CodeUnavailable         = "unavailable"
	CodeChatUnavailable     = "chat_unavailable"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorTable gives every known error a stable (status, code, message).
var errorTable = []errorMapping{
	{security.ErrTokenMissing, http.StatusUnauthorized, CodeMissingToken, "authentication required"},
	{security.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired, "token has expired"},
	{security.ErrTokenInvalid, http.StatusUnauthorized, CodeInvalidToken, "invalid token"},
	{identityservice.ErrUserNotFound, http.StatusUnauthorized, CodeInvalidToken, "invalid token"},
	{rbac.ErrNoCaller, http.StatusUnauthorized, CodeMissingToken, "authentication required"},
	{identityservice.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "invalid email, password or user type"},
	{identityservice.ErrInvalidRefreshToken, http.StatusUnauthorized, CodeInvalidRefreshToken, "invalid or expired refresh token"},
	{identityservice.ErrIncorrectPassword, http.StatusBadRequest, CodeIncorrectPassword, "current password is incorrect"},
	{userrepo.ErrEmailTaken, http.StatusConflict, CodeEmailTaken, "email already registered"},
	{userrepo.ErrChildAlreadyLinked, http.StatusConflict, CodeChildAlreadyLinked, "child account is already linked to a parent"},
	{userrepo.ErrChildNotFound, http.StatusNotFound, CodeChildNotFound, "child account not found"},
	{userrepo.ErrChildNotStudent, http.StatusUnprocessableEntity, CodeChildNotStudent, "child account is not a student"},
	{userdomain.ErrInconsistentLinkage, http.StatusInternalServerError, CodeInconsistent, "account linkage could not be completed"},
	{achievementdomain.ErrExerciseNotFound, http.StatusNotFound, CodeNotFound, "exercise not found"},
	{catalogdomain.ErrResourceNotFound, http.StatusNotFound, CodeNotFound, "resource not found"},
	{chatdomain.ErrUnavailable, http.StatusServiceUnavailable, CodeChatUnavailable, "chat is not configured"},
}

// WriteJSON writes payload as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes an ErrorBody.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// WriteServiceError maps err to its response. Unknown errors are logged and
// returned as a generic 500 without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: CodeValidation, Message: verr.Error(), Fields: verr.Fields})
		return
	}
	var ferr *rbac.ForbiddenError
	if errors.As(err, &ferr) {
		WriteError(w, http.StatusForbidden, CodeForbidden, ferr.Message)
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				requestLogger(r, log).WithError(err).Error("request failed")
			}
			WriteError(w, m.status, m.code, m.message)
			return
		}
	}
	requestLogger(r, log).WithError(err).Error("request failed")
	WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

// DecodeJSON reads a JSON body of at most 1 MiB into out. Failures are
// returned as *validation.Error so WriteServiceError renders them as 400.
func DecodeJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		msg := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		return &validation.Error{Fields: []validation.FieldError{{Field: "body", Message: msg}}}
	}
	return nil
}

// ClientIP returns the host part of the remote address, or "unknown". Routers
// mount chi's RealIP first so proxy headers are already applied.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func requestLogger(r *http.Request, log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := logrus.Fields{"method": r.Method, "path": r.URL.Path}
	if id, ok := GetRequestID(r.Context()); ok {
		fields["request_id"] = id
	}
	if id, ok := GetUserID(r.Context()); ok {
		fields["user_id"] = id
	}
	return log.WithFields(fields)
}

// CallerOr401 returns the resolved caller. When none is set it writes a 401
// and returns false.
func CallerOr401(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger) (*userdomain.User, bool) {
	u, ok := GetCaller(r.Context())
	if !ok {
		WriteServiceError(w, r, log, rbac.ErrNoCaller)
	}
	return u, ok
}

// QueryInt parses an optional integer query parameter. A missing value
// returns def.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Field(name, name+" must be an integer")
	}
	return n, nil
}
