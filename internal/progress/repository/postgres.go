package repository

import (
	"context"
	"database/sql"
	"fmt"

	"psychaid/backend/internal/progress/domain"
)

// PostgresRepository stores entries in the progress_entries table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a progress repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress_entries (id, user_id, type, category, duration_minutes, mood_before, mood_after, engagement_level, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.Type, e.Category, e.DurationMinutes, nullInt(e.MoodBefore), nullInt(e.MoodAfter), e.EngagementLevel, e.Notes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("progress: create: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID, category string) ([]*domain.Entry, error) {
	query := `SELECT id, user_id, type, category, duration_minutes, mood_before, mood_after, engagement_level, notes, created_at
		FROM progress_entries WHERE user_id = $1`
	args := []any{userID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("progress: list: %w", err)
	}
	defer rows.Close()
	var out []*domain.Entry
	for rows.Next() {
		var (
			e             domain.Entry
			before, after sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Category, &e.DurationMinutes, &before, &after, &e.EngagementLevel, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("progress: scan: %w", err)
		}
		e.MoodBefore, e.MoodAfter = intPtr(before), intPtr(after)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
