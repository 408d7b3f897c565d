package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"psychaid/backend/internal/user/domain"
)

// MemoryRepository is an in-process Repository used in development mode and tests.
// A single mutex makes CreateWithLink atomic.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	email map[string]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*domain.User), email: make(map[string]string)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(id), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return r.load(id), nil
}

// load returns a copy of the stored user with LinkedChildren derived. Caller holds mu.
func (r *MemoryRepository) load(id string) *domain.User {
	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	cp := *u
	cp.LinkedChildren = nil
	if cp.Role == domain.RoleParent {
		for _, c := range r.children(id) {
			cp.LinkedChildren = append(cp.LinkedChildren, c.ID)
		}
	}
	return &cp
}

func (r *MemoryRepository) children(parentID string) []*domain.User {
	if parentID == "" {
		return nil
	}
	var out []*domain.User
	for _, u := range r.byID {
		if u.LinkedParentID == parentID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(u)
}

func (r *MemoryRepository) insert(u *domain.User) error {
	if _, ok := r.email[u.Email]; ok {
		return ErrEmailTaken
	}
	cp := *u
	cp.LinkedChildren = nil
	r.byID[u.ID] = &cp
	r.email[u.Email] = u.ID
	return nil
}

func (r *MemoryRepository) CreateWithLink(ctx context.Context, parent *domain.User, childID string) error {
	if err := parent.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	child, ok := r.byID[childID]
	if !ok {
		return ErrChildNotFound
	}
	if child.Role != domain.RoleStudent {
		return ErrChildNotStudent
	}
	if child.LinkedParentID != "" {
		return ErrChildAlreadyLinked
	}
	if err := r.insert(parent); err != nil {
		return err
	}
	child.LinkedParentID = parent.ID
	child.UpdatedAt = parent.CreatedAt
	parent.LinkedChildren = []string{childID}
	return nil
}

func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.PasswordHash = hash
		u.UpdatedAt = at
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	for _, c := range r.children(id) {
		c.LinkedParentID = ""
	}
	delete(r.email, u.Email)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.User
	for _, c := range r.children(parentID) {
		out = append(out, r.load(c.ID))
	}
	return out, nil
}
