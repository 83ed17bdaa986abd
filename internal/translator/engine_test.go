package translator

import (
	"errors"
	"testing"
	"time"

	"tamilpdf/internal/types"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"rate limit", types.NewAppError(types.ErrAPIRateLimit, "API rate limit exceeded", nil), true},
		{"network failure", types.NewAppError(types.ErrNetwork, "API request failed", nil), true},
		{"missing config", types.NewAppError(types.ErrConfig, "API key is not configured", nil), false},
		{"invalid input", types.NewAppError(types.ErrInvalidInput, "bad page range", nil), false},
		{
			"authentication failure",
			types.NewAppErrorWithDetails(types.ErrAPICall,
				"API authentication failed", "invalid API key or unauthorized access", nil),
			false,
		},
		{
			"bad request",
			types.NewAppErrorWithDetails(types.ErrAPICall, "invalid API request", "model not found", nil),
			false,
		},
		{
			"server error",
			types.NewAppErrorWithDetails(types.ErrAPICall, "API server error", "status 502: bad gateway", nil),
			true,
		},
		{"plain timeout", errors.New("context deadline exceeded: timeout"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"unrelated error", errors.New("something else went wrong"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestNewLimiterSpacing(t *testing.T) {
	limiter := NewLimiter(60)
	if limiter.Burst() != 1 {
		t.Errorf("expected burst of 1, got %d", limiter.Burst())
	}

	// 60 requests/minute is one per second.
	interval := time.Second
	if got := time.Duration(float64(time.Second) / float64(limiter.Limit())); got != interval {
		t.Errorf("expected interval %v, got %v", interval, got)
	}
}

func TestNewLimiterDefaultsOnInvalidRate(t *testing.T) {
	limiter := NewLimiter(0)
	if limiter == nil {
		t.Fatal("expected a limiter even for zero rate")
	}
	if limiter.Limit() <= 0 {
		t.Errorf("expected a positive rate, got %v", limiter.Limit())
	}
}
