package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"psychaid/backend/internal/mood/domain"
)

const selectEntry = `SELECT id, user_id, mood, note, created_at FROM mood_entries`

// PostgresRepository stores entries in the mood_entries table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a mood repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mood_entries (id, user_id, mood, note, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserID, e.Mood, e.Note, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("mood: create: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Entry, error) {
	query := selectEntry + ` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mood: list: %w", err)
	}
	defer rows.Close()
	var out []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("mood: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*domain.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, selectEntry+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mood: latest: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("mood: delete: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*domain.Entry, error) {
	var e domain.Entry
	if err := s.Scan(&e.ID, &e.UserID, &e.Mood, &e.Note, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
