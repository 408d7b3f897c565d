package domain

import (
	"strings"
	"time"
)

// DefaultCategory is used when an entry names none.
const DefaultCategory = "general"

// Entry is one completed therapy activity.
type Entry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Type            string    `json:"type"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration"`
	MoodBefore      *int      `json:"mood_before"`
	MoodAfter       *int      `json:"mood_after"`
	EngagementLevel int       `json:"engagement_level"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"timestamp"`
}

// Normalize trims text fields and fills in the default category.
func (e *Entry) Normalize() {
	e.Type = strings.TrimSpace(e.Type)
	e.Category = strings.ToLower(strings.TrimSpace(e.Category))
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	e.Notes = strings.TrimSpace(e.Notes)
}

// MoodDelta returns after minus before when both are recorded.
func (e *Entry) MoodDelta() (int, bool) {
	if e.MoodBefore == nil || e.MoodAfter == nil {
		return 0, false
	}
	return *e.MoodAfter - *e.MoodBefore, true
}

// Rated reports whether the entry carries an engagement level.
func (e *Entry) Rated() bool { return e.EngagementLevel > 0 }
