package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewOpenAICompleter_RequiresKeyAndModel(t *testing.T) {
	if _, err := NewOpenAICompleter(Config{Model: "m"}); err == nil {
		t.Error("missing key accepted")
	}
	if _, err := NewOpenAICompleter(Config{APIKey: "k"}); err == nil {
		t.Error("missing model accepted")
	}
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Take a slow breath. "}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := c.Complete(context.Background(), "be kind", "I feel stressed")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Take a slow breath." {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "test-model" || got.Temperature != Temperature || got.MaxTokens != MaxTokens {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "I feel stressed" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAICompleter_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c, err := NewOpenAICompleter(Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error from 500 upstream")
	}
}
