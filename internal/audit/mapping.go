package audit

import (
	"net/http"
	"strings"
)

// Actions recorded for authentication events.
const (
	ActionSignup          = "signup"
	ActionLogin           = "login"
	ActionLoginFailure    = "login_failure"
	ActionRefresh         = "refresh"
	ActionLogout          = "logout"
	ActionPasswordChanged = "password_changed"
	ActionAccountDeleted  = "account_deleted"
	ActionAccessDenied    = "access_denied"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

var authRoutes = map[string]string{
	http.MethodPost + " /auth/signup":  ActionSignup,
	http.MethodPost + " /auth/login":   ActionLogin,
	http.MethodPost + " /auth/refresh": ActionRefresh,
	http.MethodPost + " /auth/logout":  ActionLogout,
	http.MethodPut + " /auth/password": ActionPasswordChanged,
	http.MethodDelete + " /auth/me":    ActionAccountDeleted,
}

// ParseRoute returns action and resource for a request method and chi route pattern
// (e.g. "GET", "/mood/child/{childID}"). Resource is the first path segment.
// Auth routes map to named actions; a 401 on login becomes login_failure and any
// 403 becomes access_denied.
func ParseRoute(method, pattern string, status int) ActionResource {
	resource := "unknown"
	trimmed := strings.Trim(pattern, "/")
	if trimmed != "" {
		resource = strings.SplitN(trimmed, "/", 2)[0]
	}
	if status == http.StatusForbidden {
		return ActionResource{Action: ActionAccessDenied, Resource: resource}
	}
	if a, ok := authRoutes[method+" "+pattern]; ok {
		if a == ActionLogin && status == http.StatusUnauthorized {
			a = ActionLoginFailure
		}
		return ActionResource{Action: a, Resource: "user"}
	}
	return ActionResource{Action: methodToAction(method, pattern), Resource: resource}
}

func methodToAction(method, pattern string) string {
	switch method {
	case http.MethodGet:
		if strings.Contains(pattern, "/child/") {
			return "read_child"
		}
		return "get"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// IsAudited reports whether action is one of the recorded authentication or
// access-denied actions.
func IsAudited(action string) bool {
	switch action {
	case ActionSignup, ActionLogin, ActionLoginFailure, ActionRefresh, ActionLogout,
		ActionPasswordChanged, ActionAccountDeleted, ActionAccessDenied:
		return true
	}
	return false
}
