package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"psychaid/backend/internal/mood/repository"
	"psychaid/backend/internal/platform/logging"
	"psychaid/backend/internal/platform/validation"
)

func newService(t *testing.T) *MoodService {
	t.Helper()
	s := NewMoodService(repository.NewMemoryRepository(), nil, logging.Discard())
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestRecord_NormalizesAndValidates(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	e, err := s.Record(ctx, "u1", RecordInput{Mood: "  Happy ", Note: " fine "})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if e.Mood != "happy" || e.Note != "fine" || e.UserID != "u1" || e.ID == "" {
		t.Errorf("entry = %+v", e)
	}

	_, err = s.Record(ctx, "u1", RecordInput{Mood: "   "})
	var verr *validation.Error
	if !errors.As(err, &verr) || verr.Fields[0].Field != "mood" {
		t.Fatalf("blank mood err = %v, want field error on mood", err)
	}
}

func TestHistory_NewestFirstAndLimited(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for _, m := range []string{"sad", "ok", "calm", "happy"} {
		if _, err := s.Record(ctx, "u1", RecordInput{Mood: m}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.History(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 || got[0].Mood != "happy" || got[1].Mood != "calm" {
		t.Errorf("history = %v, %v", got[0].Mood, got[1].Mood)
	}
	all, _ := s.ChildHistory(ctx, "u1")
	if len(all) != 4 {
		t.Errorf("child history len = %d, want 4", len(all))
	}
	latest, _ := s.Latest(ctx, "u1")
	if latest == nil || latest.Mood != "happy" {
		t.Errorf("latest = %+v", latest)
	}
}

func TestHistory_EmptyIsNotNil(t *testing.T) {
	s := newService(t)
	got, err := s.History(context.Background(), "nobody", 0)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("History = %v, %v; want empty slice", got, err)
	}
}

func TestClearHistory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	s.Record(ctx, "u1", RecordInput{Mood: "ok"})
	s.Record(ctx, "u2", RecordInput{Mood: "ok"})
	n, err := s.ClearHistory(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("ClearHistory = %d, %v", n, err)
	}
	if l, _ := s.Latest(ctx, "u1"); l != nil {
		t.Errorf("u1 still has %+v", l)
	}
	if l, _ := s.Latest(ctx, "u2"); l == nil {
		t.Error("u2 entries were removed")
	}
}
