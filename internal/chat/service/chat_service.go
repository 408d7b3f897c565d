package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"psychaid/backend/internal/chat/client"
	"psychaid/backend/internal/chat/domain"
	"psychaid/backend/internal/chat/repository"
	"psychaid/backend/internal/platform/validation"
	userdomain "psychaid/backend/internal/user/domain"
)

// HistoryLimit is the number of exchanges History returns.
const HistoryLimit = 10

// ChatInput is the body of POST /chat and /chat/public.
type ChatInput struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// Reply is the assistant's answer.
type Reply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatService answers chat messages. A nil completer makes every reply
// ErrUnavailable.
type ChatService struct {
	completer client.Completer
	repo      repository.Repository
	validator *validation.Validator
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewChatService returns a ChatService.
func NewChatService(completer client.Completer, repo repository.Repository, v *validation.Validator, log logrus.FieldLogger) *ChatService {
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChatService{completer: completer, repo: repo, validator: v, log: log, now: time.Now}
}

// Reply answers an authenticated user with a prompt tailored to their role
// and stores the exchange. Storage failures are logged, not returned.
func (s *ChatService) Reply(ctx context.Context, caller *userdomain.User, in ChatInput) (*Reply, error) {
	text, err := s.answer(ctx, domain.SystemPrompt(string(caller.Role)), in)
	if err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		Message:   strings.TrimSpace(in.Message),
		Response:  text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.log.WithError(err).WithField("user_id", caller.ID).Warn("chat: failed to store exchange")
	}
	return &Reply{Response: text, Timestamp: msg.CreatedAt}, nil
}

// PublicReply answers an anonymous message. Nothing is stored.
func (s *ChatService) PublicReply(ctx context.Context, in ChatInput) (*Reply, error) {
	text, err := s.answer(ctx, domain.PublicPrompt, in)
	if err != nil {
		return nil, err
	}
	return &Reply{Response: text, Timestamp: s.now().UTC()}, nil
}

func (s *ChatService) answer(ctx context.Context, system string, in ChatInput) (string, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validator.Struct(in); err != nil {
		return "", err
	}
	if s.completer == nil {
		return "", domain.ErrUnavailable
	}
	text, err := s.completer.Complete(ctx, system, in.Message)
	if err != nil {
		s.log.WithError(err).Error("chat: completion failed")
		return domain.FallbackReply, nil
	}
	return text, nil
}

// History returns the user's last HistoryLimit exchanges, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]*domain.Message, error) {
	out, err := s.repo.Recent(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Message{}
	}
	return out, nil
}

// ClearHistory removes the user's stored exchanges.
func (s *ChatService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteByUser(ctx, userID)
}
