package middleware

import (
	"context"

	userdomain "psychaid/backend/internal/user/domain"
)

type contextKey struct{ name string }

var (
	callerKey = contextKey{"caller"}
	stateKey  = contextKey{"request_state"}
	targetKey = contextKey{"target_user"}
)

// requestState is created once per request by RequestID and filled in by
// later middleware so outer middleware (audit, access log) can read it after
// the handler returns.
type requestState struct {
	requestID string
	userID    string
}

func withState(ctx context.Context, st *requestState) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(stateKey).(*requestState)
	return st
}

// WithCaller returns a context carrying the resolved caller.
func WithCaller(ctx context.Context, u *userdomain.User) context.Context {
	if st := stateFrom(ctx); st != nil && u != nil {
		st.userID = u.ID
	}
	return context.WithValue(ctx, callerKey, u)
}

// GetCaller returns the caller set by RequireAuth and true if set; otherwise nil, false.
func GetCaller(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(callerKey).(*userdomain.User)
	return u, ok && u != nil
}

// SetUserID records the acting user for audit and access logs. Handlers of
// unauthenticated routes call it once they know who the request was for.
func SetUserID(ctx context.Context, id string) {
	if st := stateFrom(ctx); st != nil {
		st.userID = id
	}
}

// GetUserID returns the user recorded for this request, if any.
func GetUserID(ctx context.Context) (string, bool) {
	if u, ok := GetCaller(ctx); ok {
		return u.ID, true
	}
	if st := stateFrom(ctx); st != nil && st.userID != "" {
		return st.userID, true
	}
	return "", false
}

// GetRequestID returns the request id assigned by RequestID.
func GetRequestID(ctx context.Context) (string, bool) {
	if st := stateFrom(ctx); st != nil && st.requestID != "" {
		return st.requestID, true
	}
	return "", false
}
