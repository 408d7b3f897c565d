package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the account type. It decides who may read whose data.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// ParseRole lower-cases and trims s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleParent:
		return r, true
	}
	return "", false
}

// ErrInconsistentLinkage is returned when the two sides of a parent/child link disagree.
var ErrInconsistentLinkage = errors.New("inconsistent parent/child linkage")

// User is the core user entity. LinkedChildren is derived from the students
// whose LinkedParentID points at this user and is only populated for parents.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Name           string
	LastName       string
	Role           Role
	LinkedChildren []string
	LinkedParentID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeEmail is the case-insensitive key under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// IsParent reports whether the user has the parent role.
func (u *User) IsParent() bool { return u != nil && u.Role == RoleParent }

// IsStudent reports whether the user has the student role.
func (u *User) IsStudent() bool { return u != nil && u.Role == RoleStudent }

// HasChild reports whether id is among the user's linked children.
func (u *User) HasChild(id string) bool {
	if u == nil {
		return false
	}
	for _, c := range u.LinkedChildren {
		if c == id {
			return true
		}
	}
	return false
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Email != NormalizeEmail(u.Email) {
		return errors.New("email must be normalized")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	switch u.Role {
	case RoleStudent:
		if len(u.LinkedChildren) > 0 {
			return errors.New("a student cannot have linked children")
		}
	case RoleParent:
		if u.LinkedParentID != "" {
			return errors.New("a parent cannot have a linked parent")
		}
	default:
		return errors.New("role must be student or parent")
	}
	return nil
}

// CheckLinkage verifies that parent and child reference each other and have
// the right roles. It returns ErrInconsistentLinkage otherwise.
func CheckLinkage(parent, child *User) error {
	if parent == nil || child == nil {
		return ErrInconsistentLinkage
	}
	if !parent.IsParent() || !child.IsStudent() {
		return ErrInconsistentLinkage
	}
	if child.LinkedParentID != parent.ID || !parent.HasChild(child.ID) {
		return ErrInconsistentLinkage
	}
	return nil
}

// Summary is the public view of a user returned to clients.
type Summary struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"user_type"`
	LinkedChildren []string  `json:"linked_children,omitempty"`
	LinkedParentID string    `json:"linked_parent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary returns the client-facing view of u. The password hash never leaves this package through it.
func (u *User) Summary() Summary {
	return Summary{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		LastName:       u.LastName,
		Role:           u.Role,
		LinkedChildren: append([]string(nil), u.LinkedChildren...),
		LinkedParentID: u.LinkedParentID,
		CreatedAt:      u.CreatedAt,
	}
}

// ChildSummary is the short form of a linked child shown to a parent.
type ChildSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
