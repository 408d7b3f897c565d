package repository

import (
	"context"

	"psychaid/backend/internal/achievement/domain"
)

// ExerciseRepository defines persistence for exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, e *domain.Exercise) error
	// GetByID returns the exercise, or nil if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	// MarkCompleted sets completed on an owned, not yet completed exercise
	// and reports whether this call changed it.
	MarkCompleted(ctx context.Context, id, userID string) (bool, error)
	// ListByUser returns the user's exercises, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Exercise, error)
	// CompletedTotals sums the user's completed exercises in category.
	CompletedTotals(ctx context.Context, userID, category string) (domain.Totals, error)
}

// AchievementRepository defines persistence for achievements.
type AchievementRepository interface {
	// Award stores a unless the user already holds its title, and reports whether it was stored.
	Award(ctx context.Context, a *domain.Achievement) (bool, error)
	// ListByUser returns the user's achievements, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error)
}
