package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrExerciseNotFound is returned when an exercise does not exist or belongs to another user.
var ErrExerciseNotFound = errors.New("exercise not found")

// Exercise is a wellbeing exercise a user started or finished.
type Exercise struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"timestamp"`
}

// Normalize trims the name and lower-cases the category.
func (e *Exercise) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Category = strings.ToLower(strings.TrimSpace(e.Category))
}
