package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/achievement/domain"
	"psychaid/backend/internal/achievement/repository"
	"psychaid/backend/internal/platform/validation"
)

// ExerciseInput is the body of POST /exercises.
type ExerciseInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Category        string `json:"category" validate:"required,max=64"`
	DurationMinutes int    `json:"duration" validate:"gte=0,lte=1440"`
	Completed       bool   `json:"completed"`
}

// ExerciseResult is an exercise together with any achievements it earned.
type ExerciseResult struct {
	Exercise     *domain.Exercise      `json:"exercise"`
	Achievements []*domain.Achievement `json:"new_achievements"`
}

// AchievementService records exercises and awards achievements when a
// completion crosses a rule's threshold.
type AchievementService struct {
	exercises    repository.ExerciseRepository
	achievements repository.AchievementRepository
	validator    *validation.Validator
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewAchievementService returns an AchievementService.
func NewAchievementService(exercises repository.ExerciseRepository, achievements repository.AchievementRepository, v *validation.Validator, log logrus.FieldLogger) *AchievementService {
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AchievementService{exercises: exercises, achievements: achievements, validator: v, log: log, now: time.Now}
}

// RecordExercise stores an exercise. A completed exercise is scored immediately.
func (s *AchievementService) RecordExercise(ctx context.Context, userID string, in ExerciseInput) (*ExerciseResult, error) {
	e := &domain.Exercise{
		ID:              uuid.New().String(),
		UserID:          userID,
		Name:            in.Name,
		Category:        in.Category,
		DurationMinutes: in.DurationMinutes,
		Completed:       in.Completed,
	}
	e.Normalize()
	in.Name, in.Category = e.Name, e.Category
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	e.CreatedAt = s.now().UTC()
	if err := s.exercises.Create(ctx, e); err != nil {
		return nil, err
	}
	res := &ExerciseResult{Exercise: e, Achievements: []*domain.Achievement{}}
	if !e.Completed {
		return res, nil
	}
	awarded, err := s.score(ctx, e)
	if err != nil {
		return nil, err
	}
	res.Achievements = awarded
	return res, nil
}

// CompleteExercise marks one of userID's exercises completed. Completing an
// already completed exercise awards nothing.
func (s *AchievementService) CompleteExercise(ctx context.Context, userID, exerciseID string) (*ExerciseResult, error) {
	e, err := s.exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.UserID != userID {
		return nil, domain.ErrExerciseNotFound
	}
	res := &ExerciseResult{Exercise: e, Achievements: []*domain.Achievement{}}
	changed, err := s.exercises.MarkCompleted(ctx, exerciseID, userID)
	if err != nil {
		return nil, err
	}
	e.Completed = true
	if !changed {
		return res, nil
	}
	awarded, err := s.score(ctx, e)
	if err != nil {
		return nil, err
	}
	res.Achievements = awarded
	return res, nil
}

// score awards every rule that e's completion crossed. The stored totals
// already include e.
func (s *AchievementService) score(ctx context.Context, e *domain.Exercise) ([]*domain.Achievement, error) {
	after, err := s.exercises.CompletedTotals(ctx, e.UserID, e.Category)
	if err != nil {
		return nil, err
	}
	before := domain.Totals{Count: after.Count - 1, Minutes: after.Minutes - e.DurationMinutes}
	out := []*domain.Achievement{}
	for _, rule := range domain.Earned(e.Category, before, after) {
		a := &domain.Achievement{
			ID:              uuid.New().String(),
			UserID:          e.UserID,
			Title:           rule.Title,
			Description:     rule.Description,
			Category:        rule.Category,
			DurationMinutes: e.DurationMinutes,
			ExerciseID:      e.ID,
			CreatedAt:       s.now().UTC(),
		}
		stored, err := s.achievements.Award(ctx, a)
		if err != nil {
			return nil, err
		}
		if stored {
			s.log.WithFields(logrus.Fields{"user_id": e.UserID, "title": a.Title}).Info("achievement: awarded")
			out = append(out, a)
		}
	}
	return out, nil
}

// ListExercises returns the user's exercises, newest first.
func (s *AchievementService) ListExercises(ctx context.Context, userID string) ([]*domain.Exercise, error) {
	out, err := s.exercises.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Exercise{}
	}
	return out, nil
}

// Achievements returns the user's achievements, newest first.
func (s *AchievementService) Achievements(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	out, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Achievement{}
	}
	return out, nil
}
