package repository

import (
	"context"
	"sort"
	"sync"

	"psychaid/backend/internal/mood/domain"
)

// MemoryRepository is an in-process Repository used in development mode and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.Entry
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]domain.Entry)}
}

func (r *MemoryRepository) Create(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.UserID] = append(r.entries[e.UserID], *e)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.entries[userID]
	out := make([]*domain.Entry, 0, len(src))
	for i := range src {
		e := src[i]
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, userID string) (*domain.Entry, error) {
	list, _ := r.ListByUser(ctx, userID, 1)
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.entries[userID]))
	delete(r.entries, userID)
	return n, nil
}
