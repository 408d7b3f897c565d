package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/audit/domain"
	auditrepo "psychaid/backend/internal/audit/repository"
)

// Emitter forwards audit entries to an external log pipeline (e.g. OTel logs).
type Emitter interface {
	Emit(ctx context.Context, entry *domain.AuditLog) error
}

// Event is the input to LogEvent.
type Event struct {
	UserID   string
	Action   string
	Resource string
	Status   int
	IP       string
	Metadata string
}

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, ev Event)
}

// Logger implements AuditLogger using the audit repository and an optional emitter.
type Logger struct {
	repo    auditrepo.Repository
	emitter Emitter
	log     logrus.FieldLogger
}

// NewLogger returns an AuditLogger that persists to repo and forwards to emitter.
// repo and emitter may each be nil.
func NewLogger(repo auditrepo.Repository, emitter Emitter, log logrus.FieldLogger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{repo: repo, emitter: emitter, log: log}
}

// LogEvent writes one audit log entry.
func (l *Logger) LogEvent(ctx context.Context, ev Event) {
	if l == nil {
		return
	}
	ip := ev.IP
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    ev.UserID,
		Action:    ev.Action,
		Resource:  ev.Resource,
		Status:    ev.Status,
		IP:        ip,
		Metadata:  ev.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	fields := logrus.Fields{"action": entry.Action, "resource": entry.Resource, "user_id": entry.UserID}
	if l.repo != nil {
		if err := l.repo.Create(ctx, entry); err != nil {
			l.log.WithError(err).WithFields(fields).Warn("audit: failed to persist event")
		}
	}
	if l.emitter != nil {
		if err := l.emitter.Emit(ctx, entry); err != nil {
			l.log.WithError(err).WithFields(fields).Warn("audit: failed to emit event")
		}
	}
}
