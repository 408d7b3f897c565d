package repository

import (
	"context"
	"errors"
	"time"

	"psychaid/backend/internal/user/domain"
)

var (
	// ErrEmailTaken is returned by Create and CreateWithLink when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrChildNotFound is returned by CreateWithLink when the child row disappeared.
	ErrChildNotFound = errors.New("child not found")
	// ErrChildNotStudent is returned by CreateWithLink when the child is not a student.
	ErrChildNotStudent = errors.New("child is not a student")
	// ErrChildAlreadyLinked is returned by CreateWithLink when the child already has a parent.
	ErrChildAlreadyLinked = errors.New("child already linked to a parent")
)

// Repository defines persistence for users and their parent/child linkage.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail looks up by the normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// CreateWithLink inserts parent and links the student childID to it in one
	// atomic step. Either both sides of the link exist afterwards or neither does.
	CreateWithLink(ctx context.Context, parent *domain.User, childID string) error
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	// Delete removes the user. Children of a deleted parent are unlinked.
	Delete(ctx context.Context, id string) error
	// ListChildren returns the students linked to parentID, oldest first.
	ListChildren(ctx context.Context, parentID string) ([]*domain.User, error)
}
