package audit

import (
	"context"
	"errors"
	"testing"

	"psychaid/backend/internal/audit/domain"
	auditrepo "psychaid/backend/internal/audit/repository"
)

type recordingEmitter struct {
	got []*domain.AuditLog
	err error
}

func (e *recordingEmitter) Emit(_ context.Context, entry *domain.AuditLog) error {
	e.got = append(e.got, entry)
	return e.err
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *domain.AuditLog) error { return errors.New("db down") }
func (failingRepo) ListByUser(context.Context, string, int, int) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	em := &recordingEmitter{}
	l := NewLogger(repo, em, nil)

	l.LogEvent(context.Background(), Event{UserID: "u1", Action: ActionLogin, Resource: "user", Status: 200})

	all := repo.All()
	if len(all) != 1 {
		t.Fatalf("entries = %d, want 1", len(all))
	}
	if all[0].ID == "" || all[0].IP != "unknown" || all[0].CreatedAt.IsZero() {
		t.Errorf("entry = %+v", all[0])
	}
	if len(em.got) != 1 || em.got[0].Action != ActionLogin {
		t.Errorf("emitted = %+v", em.got)
	}
}

func TestLogger_BestEffort(t *testing.T) {
	em := &recordingEmitter{err: errors.New("collector down")}
	l := NewLogger(failingRepo{}, em, nil)
	// Must not panic or block.
	l.LogEvent(context.Background(), Event{Action: ActionLoginFailure, Resource: "user", IP: "10.0.0.1"})
	if len(em.got) != 1 || em.got[0].IP != "10.0.0.1" {
		t.Errorf("emitted = %+v", em.got)
	}

	var nilLogger *Logger
	nilLogger.LogEvent(context.Background(), Event{Action: "x"})
}
