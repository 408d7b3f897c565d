package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"psychaid/backend/internal/achievement/domain"
)

const selectExercise = `SELECT id, user_id, name, category, duration_minutes, completed, created_at FROM exercises`

// PostgresExerciseRepository stores exercises in the exercises table.
type PostgresExerciseRepository struct {
	db *sql.DB
}

// NewPostgresExerciseRepository returns an exercise repository that uses the given db for persistence.
func NewPostgresExerciseRepository(db *sql.DB) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{db: db}
}

func (r *PostgresExerciseRepository) Create(ctx context.Context, e *domain.Exercise) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exercises (id, user_id, name, category, duration_minutes, completed, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.Name, e.Category, e.DurationMinutes, e.Completed, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("exercise: create: %w", err)
	}
	return nil
}

func (r *PostgresExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	e, err := scanExercise(r.db.QueryRowContext(ctx, selectExercise+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("exercise: get: %w", err)
	}
	return e, nil
}

func (r *PostgresExerciseRepository) MarkCompleted(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE exercises SET completed = TRUE WHERE id = $1 AND user_id = $2 AND NOT completed`, id, userID)
	if err != nil {
		return false, fmt.Errorf("exercise: complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("exercise: complete: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresExerciseRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Exercise, error) {
	rows, err := r.db.QueryContext(ctx, selectExercise+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("exercise: list: %w", err)
	}
	defer rows.Close()
	var out []*domain.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("exercise: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresExerciseRepository) CompletedTotals(ctx context.Context, userID, category string) (domain.Totals, error) {
	var t domain.Totals
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0) FROM exercises WHERE user_id = $1 AND category = $2 AND completed`,
		userID, category).Scan(&t.Count, &t.Minutes)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("exercise: totals: %w", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(s rowScanner) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := s.Scan(&e.ID, &e.UserID, &e.Name, &e.Category, &e.DurationMinutes, &e.Completed, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

// PostgresAchievementRepository stores achievements in the achievements table.
type PostgresAchievementRepository struct {
	db *sql.DB
}

// NewPostgresAchievementRepository returns an achievement repository that uses the given db for persistence.
func NewPostgresAchievementRepository(db *sql.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) Award(ctx context.Context, a *domain.Achievement) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO achievements (id, user_id, title, description, category, duration_minutes, exercise_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (user_id, title) DO NOTHING`,
		a.ID, a.UserID, a.Title, a.Description, a.Category, a.DurationMinutes, a.ExerciseID, a.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("achievement: award: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("achievement: award: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresAchievementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, category, duration_minutes, exercise_id, created_at
		 FROM achievements WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement: list: %w", err)
	}
	defer rows.Close()
	var out []*domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Category, &a.DurationMinutes, &a.ExerciseID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("achievement: scan: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}
