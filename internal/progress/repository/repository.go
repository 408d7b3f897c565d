package repository

import (
	"context"

	"psychaid/backend/internal/progress/domain"
)

// Repository defines persistence for progress entries.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	// ListByUser returns the user's entries oldest first. A non-empty category filters by it.
	ListByUser(ctx context.Context, userID, category string) ([]*domain.Entry, error)
}
