// Package translator provides Tamil-to-English translation of OCR output
// through rate-limited remote APIs, with chunking, retries and caching.
package translator

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tamilpdf/internal/types"
)

const (
	// DefaultMaxRetries is the number of retries after a failed API call
	DefaultMaxRetries = 3
	// BaseRetryDelay is the base delay between retries (exponential backoff)
	BaseRetryDelay = 2 * time.Second
	// MaxRetryDelay caps the backoff delay
	MaxRetryDelay = 30 * time.Second
	// DefaultTimeout is the default HTTP client timeout for API calls
	DefaultTimeout = 120 * time.Second

	// systemPrompt instructs the model how to translate. Kept identical for
	// both engines so cached results stay comparable.
	systemPrompt = `You are a professional translator specializing in Tamil to English translation.
Translate the provided Tamil text accurately while maintaining the original meaning, context, and tone.
Keep proper nouns and names unchanged unless they have standard English equivalents.
Provide only the English translation without any additional commentary or explanations.`
)

// Engine translates a single piece of Tamil text to English.
type Engine interface {
	// Name identifies the engine implementation ("openai", "gemini").
	Name() string
	// Translate returns the English translation of text. Implementations
	// perform a single API request; chunking and retries are handled by
	// Translator.
	Translate(ctx context.Context, text string) (string, error)
}

// NewLimiter builds a rate limiter allowing requestsPerMinute API calls,
// with a burst of one so requests are evenly spaced.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 15
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// isRetryableError determines whether a failed API call should be retried.
// Rate limits, server errors and network failures are transient; bad
// credentials and malformed requests are not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if appErr, ok := err.(*types.AppError); ok {
		switch appErr.Code {
		case types.ErrAPIRateLimit, types.ErrNetwork:
			return true
		case types.ErrConfig, types.ErrInvalidInput:
			return false
		case types.ErrAPICall:
			details := appErr.Message + " " + appErr.Details
			if strings.Contains(details, "authentication failed") ||
				strings.Contains(details, "invalid API key") ||
				strings.Contains(details, "unauthorized") ||
				strings.Contains(details, "invalid API request") {
				return false
			}
			if strings.Contains(details, "server error") || strings.Contains(details, "status 5") {
				return true
			}
			// Unclassified API failures are likely transient.
			return true
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "reset by peer") {
		return true
	}

	return false
}

// backoffDelay calculates the exponential backoff delay for the given
// attempt: 2s, 4s, 8s, ... capped at MaxRetryDelay.
func backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := BaseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	return delay
}
