package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"psychaid/backend/internal/user/domain"
)

const pgUniqueViolation = "23505"

const selectUser = `SELECT u.id, u.email, u.password_hash, u.name, u.last_name, u.role,
	COALESCE(u.linked_parent_id, ''), u.created_at, u.updated_at,
	COALESCE((SELECT string_agg(c.id, ',' ORDER BY c.created_at, c.id) FROM users c WHERE c.linked_parent_id = u.id), '')
FROM users u`

// PostgresRepository stores users in the users table. Linkage lives in the
// single users.linked_parent_id column; a parent's children are derived from it.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+` WHERE u.id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+` WHERE u.email = $1`, domain.NormalizeEmail(email))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user: get: %w", err)
	}
	return u, nil
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertUser, insertArgs(u)...); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

const insertUser = `INSERT INTO users (id, email, password_hash, name, last_name, role, linked_parent_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`

func insertArgs(u *domain.User) []any {
	return []any{u.ID, u.Email, u.PasswordHash, u.Name, u.LastName, string(u.Role), u.LinkedParentID, u.CreatedAt, u.UpdatedAt}
}

// CreateWithLink inserts parent and sets the child's linked_parent_id inside
// one transaction. The child row is locked first so concurrent signups
// linking the same student serialize.
func (r *PostgresRepository) CreateWithLink(ctx context.Context, parent *domain.User, childID string) error {
	if err := parent.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("user: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var role string
	var linkedParent sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT role, linked_parent_id FROM users WHERE id = $1 FOR UPDATE`, childID).Scan(&role, &linkedParent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrChildNotFound
		}
		return fmt.Errorf("user: lock child: %w", err)
	}
	if domain.Role(role) != domain.RoleStudent {
		return ErrChildNotStudent
	}
	if linkedParent.Valid && linkedParent.String != "" {
		return ErrChildAlreadyLinked
	}

	if _, err := tx.ExecContext(ctx, insertUser, insertArgs(parent)...); err != nil {
		return mapInsertErr(err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET linked_parent_id = $1, updated_at = $2 WHERE id = $3 AND role = 'student' AND linked_parent_id IS NULL`,
		parent.ID, parent.CreatedAt, childID)
	if err != nil {
		return fmt.Errorf("user: link child: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return domain.ErrInconsistentLinkage
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("user: commit: %w", err)
	}
	parent.LinkedChildren = []string{childID}
	return nil
}

// UpdatePasswordHash replaces the stored hash. A missing user is not an error.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, at, id)
	if err != nil {
		return fmt.Errorf("user: update password: %w", err)
	}
	return nil
}

// Delete removes the user row; the foreign key clears children's linked_parent_id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user: delete: %w", err)
	}
	return nil
}

// ListChildren returns the students whose linked_parent_id is parentID.
func (r *PostgresRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` WHERE u.linked_parent_id = $1 ORDER BY u.created_at, u.id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("user: list children: %w", err)
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user: list children: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		role     string
		children string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.LastName, &role,
		&u.LinkedParentID, &u.CreatedAt, &u.UpdatedAt, &children); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if children != "" {
		u.LinkedChildren = strings.Split(children, ",")
	}
	return &u, nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrEmailTaken
	}
	return fmt.Errorf("user: insert: %w", err)
}
