// Package client talks to an OpenAI-compatible chat completions endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completion parameters sent with every request.
const (
	Temperature = 0.7
	MaxTokens   = 1024
)

// Completer produces one assistant reply for a system prompt and user text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config configures OpenAICompleter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// MaxRetries is passed to the SDK. Zero disables retries.
	MaxRetries int
}

// OpenAICompleter is a Completer backed by the openai-go SDK.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter validates cfg and returns a completer.
func NewOpenAICompleter(cfg Config) (*OpenAICompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("chat: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("chat: model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	return &OpenAICompleter{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// Complete sends one chat completion request.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat: completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat: completion returned empty content")
	}
	return text, nil
}
