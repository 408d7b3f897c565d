package repository

import (
	"context"

	"psychaid/backend/internal/session/domain"
)

// RevocationStore is the server-side deny list for refresh tokens.
type RevocationStore interface {
	// Revoke records r. Entries for already-expired tokens are dropped.
	Revoke(ctx context.Context, r *domain.Revocation) error
	// IsRevoked reports whether the refresh token with jti was revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
