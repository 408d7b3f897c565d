package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/mood/domain"
	"psychaid/backend/internal/mood/repository"
	"psychaid/backend/internal/platform/validation"
)

// History limits.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// RecordInput is the body of a mood check-in.
type RecordInput struct {
	Mood string `json:"mood" validate:"required,max=32"`
	Note string `json:"note" validate:"max=1000"`
}

// MoodService records and reads mood entries. Callers pass ids that have
// already been cleared by the access gate.
type MoodService struct {
	repo      repository.Repository
	validator *validation.Validator
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewMoodService returns a MoodService.
func NewMoodService(repo repository.Repository, v *validation.Validator, log logrus.FieldLogger) *MoodService {
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MoodService{repo: repo, validator: v, log: log, now: time.Now}
}

// Record stores a check-in for userID.
func (s *MoodService) Record(ctx context.Context, userID string, in RecordInput) (*domain.Entry, error) {
	e := &domain.Entry{ID: uuid.New().String(), UserID: userID, Mood: in.Mood, Note: in.Note}
	e.Normalize()
	in.Mood, in.Note = e.Mood, e.Note
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	e.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "mood": e.Mood}).Debug("mood: recorded")
	return e, nil
}

// History returns the newest entries for userID. limit is clamped to
// [1, MaxHistoryLimit]; zero selects DefaultHistoryLimit.
func (s *MoodService) History(ctx context.Context, userID string, limit int) ([]*domain.Entry, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.list(ctx, userID, limit)
}

// ChildHistory returns every entry of a child, newest first.
func (s *MoodService) ChildHistory(ctx context.Context, childID string) ([]*domain.Entry, error) {
	return s.list(ctx, childID, 0)
}

// Latest returns the newest entry, or nil.
func (s *MoodService) Latest(ctx context.Context, userID string) (*domain.Entry, error) {
	return s.repo.Latest(ctx, userID)
}

// ClearHistory removes all of userID's entries.
func (s *MoodService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "deleted": n}).Info("mood: history cleared")
	return n, nil
}

func (s *MoodService) list(ctx context.Context, userID string, limit int) ([]*domain.Entry, error) {
	out, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Entry{}
	}
	return out, nil
}
