package repository

import (
	"context"
	"sort"
	"sync"

	"psychaid/backend/internal/progress/domain"
)

// MemoryRepository is an in-process Repository used in development mode and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.Entry
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID, category string) ([]*domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Entry
	for i := range r.entries {
		e := r.entries[i]
		if e.UserID != userID || (category != "" && e.Category != category) {
			continue
		}
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
