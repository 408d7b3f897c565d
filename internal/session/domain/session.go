package domain

import "time"

// Revocation marks a refresh token, identified by its jti, as unusable until
// the token would have expired anyway.
type Revocation struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// TTL is how long the revocation must be remembered at time now.
// Non-positive means the token has already expired and nothing needs storing.
func (r *Revocation) TTL(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now)
}
