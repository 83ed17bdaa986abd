package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// OpenAIEngine translates via an OpenAI-compatible chat completions API.
type OpenAIEngine struct {
	apiKey      string
	model       string
	apiURL      string
	temperature float64
	client      *http.Client

	tokensUsed int
}

// OpenAIConfig holds options for creating an OpenAIEngine.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// NewOpenAIEngine creates an engine for an OpenAI-compatible API.
func NewOpenAIEngine(cfg OpenAIConfig) *OpenAIEngine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIEngine{
		apiKey:      cfg.APIKey,
		model:       model,
		apiURL:      normalizeAPIURL(cfg.BaseURL),
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

// Name identifies the engine.
func (e *OpenAIEngine) Name() string { return "openai" }

// TokensUsed returns the cumulative token usage reported by the API.
func (e *OpenAIEngine) TokensUsed() int { return e.tokensUsed }

// normalizeAPIURL ensures the API URL ends with /chat/completions
func normalizeAPIURL(url string) string {
	if url == "" {
		return "https://api.openai.com/v1/chat/completions"
	}
	url = strings.TrimSuffix(url, "/")
	if strings.HasSuffix(url, "/chat/completions") {
		return url
	}
	return url + "/chat/completions"
}

// chatCompletionRequest represents the request body for the chat completions API.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatMessage represents a message in the chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse represents the response from the chat completions API.
type chatCompletionResponse struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []chatChoice  `json:"choices"`
	Usage   chatUsage     `json:"usage"`
	Error   *chatAPIError `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// TestConnection verifies credentials and reachability with a minimal request.
func (e *OpenAIEngine) TestConnection(ctx context.Context) error {
	logger.Info("testing API connection",
		logger.String("apiURL", e.apiURL),
		logger.String("model", e.model))

	if e.apiKey == "" {
		return types.NewAppError(types.ErrConfig, "API key is not configured", nil)
	}

	_, err := e.complete(ctx, []chatMessage{
		{Role: "user", Content: "Reply with only the word 'ok', nothing else."},
	})
	return err
}

// Translate translates one chunk of Tamil text to English in a single
// chat completion request.
func (e *OpenAIEngine) Translate(ctx context.Context, text string) (string, error) {
	if e.apiKey == "" {
		return "", types.NewAppError(types.ErrConfig, "API key is not configured", nil)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	logger.Debug("calling chat completions API",
		logger.String("model", e.model),
		logger.Int("textLen", len(text)))

	return e.complete(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Translate this Tamil text to English:\n\n" + text},
	})
}

// complete performs one chat completion round trip.
func (e *OpenAIEngine) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: e.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Error("API request failed", err)
		return "", types.NewAppError(types.ErrNetwork, "API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "failed to read API response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", handleAPIHTTPError(resp.StatusCode, body)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", types.NewAppError(types.ErrAPICall, "failed to parse API response", err)
	}

	if chatResp.Error != nil {
		return "", types.NewAppErrorWithDetails(types.ErrAPICall,
			"API returned error", chatResp.Error.Message, nil)
	}
	if len(chatResp.Choices) == 0 {
		return "", types.NewAppError(types.ErrAPICall, "API returned no choices", nil)
	}

	e.tokensUsed += chatResp.Usage.TotalTokens
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// handleAPIHTTPError maps an HTTP error status to an AppError.
func handleAPIHTTPError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	errorDetails := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		errorDetails = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"API authentication failed", "invalid API key or unauthorized access", nil)
	case http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(types.ErrAPIRateLimit,
			"API rate limit exceeded", errorDetails, nil)
	case http.StatusBadRequest:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"invalid API request", errorDetails, nil)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"API server error", fmt.Sprintf("status %d: %s", statusCode, errorDetails), nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"API request failed", fmt.Sprintf("status %d: %s", statusCode, errorDetails), nil)
	}
}
