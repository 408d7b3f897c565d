package domain

import (
	"errors"
	"time"
)

// ErrUnavailable is returned when no chat backend is configured.
var ErrUnavailable = errors.New("chat unavailable")

// FallbackReply is sent when the model cannot be reached.
const FallbackReply = "I apologize, but I'm having trouble processing your message. Please try again."

// Message is one stored exchange: the user's text and the assistant's reply.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"timestamp"`
}
