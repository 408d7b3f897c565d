package domain

import "time"

// AuditLog is one security-relevant event: who did what to which resource, from where.
type AuditLog struct {
	ID        string
	UserID    string // empty for anonymous requests such as failed logins
	Action    string
	Resource  string
	Status    int
	IP        string
	Metadata  string
	CreatedAt time.Time
}
