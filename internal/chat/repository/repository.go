package repository

import (
	"context"

	"psychaid/backend/internal/chat/domain"
)

// Repository defines persistence for chat exchanges.
type Repository interface {
	Create(ctx context.Context, m *domain.Message) error
	// Recent returns the user's last limit exchanges in chronological order.
	Recent(ctx context.Context, userID string, limit int) ([]*domain.Message, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
