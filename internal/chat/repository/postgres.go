package repository

import (
	"context"
	"database/sql"
	"fmt"

	"psychaid/backend/internal/chat/domain"
)

// PostgresRepository stores exchanges in the chat_messages table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a chat repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, message, response, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Message, m.Response, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("chat: create: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Recent(ctx context.Context, userID string, limit int) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, response, created_at FROM (
			SELECT id, user_id, message, response, created_at FROM chat_messages
			WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
		) recent ORDER BY created_at, id`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: recent: %w", err)
	}
	defer rows.Close()
	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &m.Response, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chat: scan: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("chat: delete: %w", err)
	}
	return res.RowsAffected()
}
