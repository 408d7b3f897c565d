package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/platform/validation"
	"psychaid/backend/internal/progress/domain"
	"psychaid/backend/internal/progress/repository"
)

// SaveInput is the body of POST /progress.
type SaveInput struct {
	Type            string `json:"type" validate:"required,max=64"`
	Category        string `json:"category" validate:"omitempty,max=64"`
	DurationMinutes int    `json:"duration" validate:"gte=0,lte=1440"`
	MoodBefore      *int   `json:"mood_before" validate:"omitempty,min=1,max=10"`
	MoodAfter       *int   `json:"mood_after" validate:"omitempty,min=1,max=10"`
	EngagementLevel int    `json:"engagement_level" validate:"gte=0,lte=5"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// ProgressService records activities and computes progress reports.
type ProgressService struct {
	repo      repository.Repository
	validator *validation.Validator
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewProgressService returns a ProgressService.
func NewProgressService(repo repository.Repository, v *validation.Validator, log logrus.FieldLogger) *ProgressService {
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProgressService{repo: repo, validator: v, log: log, now: time.Now}
}

// Save stores an activity for userID.
func (s *ProgressService) Save(ctx context.Context, userID string, in SaveInput) (*domain.Entry, error) {
	e := &domain.Entry{
		ID:              uuid.New().String(),
		UserID:          userID,
		Type:            in.Type,
		Category:        in.Category,
		DurationMinutes: in.DurationMinutes,
		MoodBefore:      in.MoodBefore,
		MoodAfter:       in.MoodAfter,
		EngagementLevel: in.EngagementLevel,
		Notes:           in.Notes,
	}
	e.Normalize()
	in.Type, in.Category, in.Notes = e.Type, e.Category, e.Notes
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	e.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "category": e.Category}).Debug("progress: saved")
	return e, nil
}

// Stats returns the full report, optionally restricted to one category.
func (s *ProgressService) Stats(ctx context.Context, userID, category string) (domain.Stats, error) {
	entries, err := s.repo.ListByUser(ctx, userID, normalizeCategory(category))
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(entries), nil
}

// CategoryStats returns totals for one category.
func (s *ProgressService) CategoryStats(ctx context.Context, userID, category string) (domain.CategoryStats, error) {
	entries, err := s.repo.ListByUser(ctx, userID, normalizeCategory(category))
	if err != nil {
		return domain.CategoryStats{}, err
	}
	return domain.ComputeCategoryStats(entries), nil
}

// ChildSummary returns a parent's view of a child's progress.
func (s *ProgressService) ChildSummary(ctx context.Context, childID string) (domain.ChildSummary, error) {
	entries, err := s.repo.ListByUser(ctx, childID, "")
	if err != nil {
		return domain.ChildSummary{}, err
	}
	return domain.ComputeChildSummary(entries), nil
}

// ChildCategorySummary returns a parent's per-category view of a child's progress.
func (s *ProgressService) ChildCategorySummary(ctx context.Context, childID, category string) (domain.ChildCategorySummary, error) {
	entries, err := s.repo.ListByUser(ctx, childID, normalizeCategory(category))
	if err != nil {
		return domain.ChildCategorySummary{}, err
	}
	return domain.ComputeChildCategorySummary(entries), nil
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
