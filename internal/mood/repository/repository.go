package repository

import (
	"context"

	"psychaid/backend/internal/mood/domain"
)

// Repository defines persistence for mood entries.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	// ListByUser returns up to limit entries, newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Entry, error)
	// Latest returns the newest entry, or nil if the user has none.
	Latest(ctx context.Context, userID string) (*domain.Entry, error)
	// DeleteByUser removes every entry of the user and reports how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
