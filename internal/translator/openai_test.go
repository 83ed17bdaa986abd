package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tamilpdf/internal/types"
)

func newTestEngine(serverURL string) *OpenAIEngine {
	return NewOpenAIEngine(OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     serverURL,
		Model:       "test-model",
		Temperature: 0.1,
	})
}

func completionResponse(content string, tokens int) chatCompletionResponse {
	return chatCompletionResponse{
		ID:    "chatcmpl-test",
		Model: "test-model",
		Choices: []chatChoice{
			{Message: chatMessage{Role: "assistant", Content: content}},
		},
		Usage: chatUsage{TotalTokens: tokens},
	}
}

func TestOpenAITranslateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}

		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(completionResponse("The sky is blue.", 42))
	}))
	defer server.Close()

	engine := newTestEngine(server.URL)
	got, err := engine.Translate(context.Background(), "வானம் நீலமாக உள்ளது.")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "The sky is blue." {
		t.Errorf("got %q, want %q", got, "The sky is blue.")
	}
	if engine.TokensUsed() != 42 {
		t.Errorf("TokensUsed() = %d, want 42", engine.TokensUsed())
	}
}

func TestOpenAITranslateEmptyText(t *testing.T) {
	engine := newTestEngine("http://unused.invalid")
	got, err := engine.Translate(context.Background(), "   ")
	if err != nil {
		t.Fatalf("empty text should not call the API: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestOpenAITranslateMissingAPIKey(t *testing.T) {
	engine := NewOpenAIEngine(OpenAIConfig{Model: "test-model"})
	_, err := engine.Translate(context.Background(), "உரை")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrConfig {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if isRetryableError(err) {
		t.Error("missing API key must not be retried")
	}
}

func TestOpenAITranslateUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer server.Close()

	_, err := newTestEngine(server.URL).Translate(context.Background(), "உரை")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrAPICall {
		t.Fatalf("expected ErrAPICall, got %v", err)
	}
	if isRetryableError(err) {
		t.Error("authentication failure must not be retried")
	}
}

func TestOpenAITranslateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Rate limit reached"}}`))
	}))
	defer server.Close()

	_, err := newTestEngine(server.URL).Translate(context.Background(), "உரை")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrAPIRateLimit {
		t.Fatalf("expected ErrAPIRateLimit, got %v", err)
	}
	if !isRetryableError(err) {
		t.Error("rate limit should be retried")
	}
}

func TestOpenAITranslateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestEngine(server.URL).Translate(context.Background(), "உரை")
	if err == nil {
		t.Fatal("expected an error for 502")
	}
	if !isRetryableError(err) {
		t.Error("server error should be retried")
	}
}

func TestOpenAITranslateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{ID: "chatcmpl-empty"})
	}))
	defer server.Close()

	_, err := newTestEngine(server.URL).Translate(context.Background(), "உரை")
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrAPICall {
		t.Fatalf("expected ErrAPICall for empty choices, got %v", err)
	}
}

func TestOpenAITestConnection(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(completionResponse("ok", 3))
	}))
	defer server.Close()

	if err := newTestEngine(server.URL).TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection failed: %v", err)
	}
	if !called {
		t.Error("TestConnection should hit the API")
	}
}

func TestNormalizeAPIURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:8080/v1", "http://localhost:8080/v1/chat/completions"},
	}

	for _, tt := range tests {
		if got := normalizeAPIURL(tt.in); got != tt.want {
			t.Errorf("normalizeAPIURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
