package repository

import (
	"context"
	"sort"
	"sync"

	"psychaid/backend/internal/achievement/domain"
)

// MemoryExerciseRepository is an in-process ExerciseRepository.
type MemoryExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
}

// NewMemoryExerciseRepository returns an empty MemoryExerciseRepository.
func NewMemoryExerciseRepository() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{exercises: make(map[string]domain.Exercise)}
}

func (r *MemoryExerciseRepository) Create(ctx context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[e.ID] = *e
	return nil
}

func (r *MemoryExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *MemoryExerciseRepository) MarkCompleted(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok || e.UserID != userID || e.Completed {
		return false, nil
	}
	e.Completed = true
	r.exercises[id] = e
	return true, nil
}

func (r *MemoryExerciseRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Exercise
	for _, e := range r.exercises {
		if e.UserID == userID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryExerciseRepository) CompletedTotals(ctx context.Context, userID, category string) (domain.Totals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var t domain.Totals
	for _, e := range r.exercises {
		if e.UserID == userID && e.Category == category && e.Completed {
			t = t.Add(e.DurationMinutes)
		}
	}
	return t, nil
}

// MemoryAchievementRepository is an in-process AchievementRepository.
type MemoryAchievementRepository struct {
	mu    sync.RWMutex
	items []domain.Achievement
}

// NewMemoryAchievementRepository returns an empty MemoryAchievementRepository.
func NewMemoryAchievementRepository() *MemoryAchievementRepository {
	return &MemoryAchievementRepository{}
}

func (r *MemoryAchievementRepository) Award(ctx context.Context, a *domain.Achievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, have := range r.items {
		if have.UserID == a.UserID && have.Title == a.Title {
			return false, nil
		}
	}
	r.items = append(r.items, *a)
	return true, nil
}

func (r *MemoryAchievementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Achievement
	for i := len(r.items) - 1; i >= 0; i-- {
		if a := r.items[i]; a.UserID == userID {
			out = append(out, &a)
		}
	}
	return out, nil
}
