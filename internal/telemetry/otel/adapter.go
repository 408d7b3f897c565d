package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"psychaid/backend/internal/audit/domain"
)

const auditScope = "psychaid.audit"

// AuditEmitter sends audit entries as OTel log records.
type AuditEmitter struct {
	logger otellog.Logger
}

// NewAuditEmitter returns an emitter bound to provider, or nil when provider is nil
// so callers can skip emission entirely.
func NewAuditEmitter(provider *sdklog.LoggerProvider) *AuditEmitter {
	if provider == nil {
		return nil
	}
	return NewAuditEmitterWithLogger(provider.Logger(auditScope))
}

// NewAuditEmitterWithLogger wraps an existing otel logger.
func NewAuditEmitterWithLogger(logger otellog.Logger) *AuditEmitter {
	return &AuditEmitter{logger: logger}
}

// Emit converts entry to a log record. Denials and failed logins are emitted at WARN.
func (e *AuditEmitter) Emit(ctx context.Context, entry *domain.AuditLog) error {
	if e == nil || entry == nil {
		return nil
	}
	var rec otellog.Record
	rec.SetTimestamp(entry.CreatedAt)
	rec.SetObservedTimestamp(entry.CreatedAt)
	rec.SetEventName("audit." + entry.Action)
	rec.SetBody(otellog.StringValue(entry.Action + " " + entry.Resource))
	rec.SetSeverity(otellog.SeverityInfo)
	if entry.Status >= 400 {
		rec.SetSeverity(otellog.SeverityWarn)
	}
	rec.AddAttributes(
		otellog.String("audit.id", entry.ID),
		otellog.String("action", entry.Action),
		otellog.String("resource", entry.Resource),
		otellog.Int("http.status", entry.Status),
		otellog.String("client.ip", entry.IP),
	)
	if entry.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", entry.UserID))
	}
	if entry.Metadata != "" {
		rec.AddAttributes(otellog.String("metadata", entry.Metadata))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
