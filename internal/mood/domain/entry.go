package domain

import (
	"strings"
	"time"
)

// Entry is one mood check-in.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"timestamp"`
}

// Normalize lower-cases the mood and trims both fields.
func (e *Entry) Normalize() {
	e.Mood = strings.ToLower(strings.TrimSpace(e.Mood))
	e.Note = strings.TrimSpace(e.Note)
}
