package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name          string
		defaultPrompt string
		customPrompt  string
		wantPrefix    string
	}{
		{name: "custom prompt wins", defaultPrompt: "configured", customPrompt: "custom", wantPrefix: "custom"},
		{name: "configured prompt", defaultPrompt: "configured", wantPrefix: "configured"},
		{name: "built-in prompt", wantPrefix: DefaultNewsPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPrompt(tt.defaultPrompt, tt.customPrompt, "本文")
			if err != nil {
				t.Fatalf("buildPrompt() error = %v", err)
			}
			if !strings.HasPrefix(got, tt.wantPrefix) || !strings.HasSuffix(got, "本文") {
				t.Errorf("buildPrompt() = %q", got)
			}
		})
	}
}

func TestBuildPrompt_EmptyContent(t *testing.T) {
	if _, err := buildPrompt("", "", "  \n"); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("buildPrompt() error = %v, want ErrEmptyContent", err)
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel("gemini"); got != "gemini-2.5-flash" {
		t.Errorf("DefaultModel(gemini) = %q", got)
	}
	if got := DefaultModel("claude"); !strings.HasPrefix(got, "claude-") {
		t.Errorf("DefaultModel(claude) = %q", got)
	}
}

func TestClaudeSummarizer(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-7-sonnet-latest",
			"content": [{"type": "text", "text": "  本日、東京で新しい交通計画が承認されました。  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	}))
	defer server.Close()

	s, err := NewClaudeSummarizer("test-key", "claude-3-7-sonnet-latest", "", 0,
		option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewClaudeSummarizer() error = %v", err)
	}

	summary, err := s.Summarize(context.Background(), "記事の本文", "")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "本日、東京で新しい交通計画が承認されました。" {
		t.Errorf("Summarize() = %q", summary)
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotBody["model"] != "claude-3-7-sonnet-latest" || gotBody["max_tokens"] != float64(1024) {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestClaudeSummarizer_EmptyContentSkipsAPI(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	s, _ := NewClaudeSummarizer("k", "m", "", 0, option.WithBaseURL(server.URL))
	if _, err := s.Summarize(context.Background(), "", ""); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Summarize() error = %v, want ErrEmptyContent", err)
	}
	if called {
		t.Error("API called for empty content")
	}
}
