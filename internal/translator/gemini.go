package translator

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// GeminiEngine translates via the Google Gemini API.
type GeminiEngine struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiConfig holds options for creating a GeminiEngine.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// NewGeminiEngine creates a Gemini-backed translation engine.
func NewGeminiEngine(ctx context.Context, cfg GeminiConfig) (*GeminiEngine, error) {
	if cfg.APIKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "Gemini API key is not configured", nil)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to initialize Gemini client", err)
	}

	logger.Info("Gemini engine initialized", logger.String("model", model))
	return &GeminiEngine{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Name identifies the engine.
func (e *GeminiEngine) Name() string { return "gemini" }

// TestConnection verifies credentials and reachability with a minimal request.
func (e *GeminiEngine) TestConnection(ctx context.Context) error {
	logger.Info("testing Gemini API connection", logger.String("model", e.model))
	_, err := e.generate(ctx, "Reply with only the word 'ok', nothing else.")
	return err
}

// Translate translates one chunk of Tamil text to English in a single
// generation request.
func (e *GeminiEngine) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	logger.Debug("calling Gemini API",
		logger.String("model", e.model),
		logger.Int("textLen", len(text)))

	return e.generate(ctx, "Translate this Tamil text to English:\n\n"+text)
}

// generate performs one content generation round trip.
func (e *GeminiEngine) generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(e.temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		if strings.Contains(err.Error(), "429") || strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
			return "", types.NewAppError(types.ErrAPIRateLimit, "Gemini rate limit exceeded", err)
		}
		return "", types.NewAppError(types.ErrAPICall, "Gemini generation failed", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", types.NewAppError(types.ErrAPICall, "empty response from Gemini", nil)
	}

	return strings.TrimSpace(response.String()), nil
}
