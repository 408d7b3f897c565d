package repository

import (
	"context"
	"sync"

	"psychaid/backend/internal/chat/domain"
)

// MemoryRepository is an in-process Repository. Exchanges are kept in insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{messages: make(map[string][]domain.Message)}
}

func (r *MemoryRepository) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.UserID] = append(r.messages[m.UserID], *m)
	return nil
}

func (r *MemoryRepository) Recent(ctx context.Context, userID string, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.messages[userID]
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]*domain.Message, 0, len(src))
	for i := range src {
		m := src[i]
		out = append(out, &m)
	}
	return out, nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.messages[userID]))
	delete(r.messages, userID)
	return n, nil
}
