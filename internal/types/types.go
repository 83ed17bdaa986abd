// Package types defines core data types and enums shared across the Tamil
// PDF OCR and translation pipeline.
package types

// Config holds the application configuration.
type Config struct {
	// Translation engine settings
	Engine        string `json:"engine"` // "openai" or "gemini"
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"` // base URL of an OpenAI-compatible API
	OpenAIModel   string `json:"openai_model"`
	GeminiAPIKey  string `json:"gemini_api_key"`
	GeminiModel   string `json:"gemini_model"`
	// Chunking and rate limiting
	MaxChunkSize      int     `json:"max_chunk_size"`      // maximum characters per translation request
	RequestsPerMinute int     `json:"requests_per_minute"` // API rate limit budget
	Temperature       float64 `json:"temperature"`
	DocumentMode      bool    `json:"document_mode"` // translate whole document in one request when it fits
	// OCR settings
	OCRDPI       int      `json:"ocr_dpi"`
	OCRLanguages []string `json:"ocr_languages"`
	OCRPSM       int      `json:"ocr_psm"`
	Preprocess   bool     `json:"preprocess"` // grayscale/contrast preprocessing before OCR
	Concurrency  int      `json:"concurrency"`
	// File handling
	OutputDirectory string `json:"output_directory"`
	CachePath       string `json:"cache_path"`
}

// ProcessPhase identifies the pipeline stage currently running.
type ProcessPhase string

const (
	PhaseIdle        ProcessPhase = "idle"
	PhaseValidating  ProcessPhase = "validating"
	PhaseRasterizing ProcessPhase = "rasterizing"
	PhaseRecognizing ProcessPhase = "recognizing"
	PhaseTranslating ProcessPhase = "translating"
	PhaseWriting     ProcessPhase = "writing"
	PhaseComplete    ProcessPhase = "complete"
	PhaseError       ProcessPhase = "error"
)

// Status describes pipeline progress for callbacks and display.
type Status struct {
	Phase    ProcessPhase `json:"phase"`
	Progress int          `json:"progress"` // 0-100
	Message  string       `json:"message"`
	Error    string       `json:"error,omitempty"`
}

// PageText is the OCR result for a single page. Page numbers are 1-indexed
// and refer to positions in the source document, not in the processed range.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// TranslationStats summarizes a translation run.
type TranslationStats struct {
	Chunks       int `json:"chunks"`
	FailedChunks int `json:"failed_chunks"`
	CachedChunks int `json:"cached_chunks"`
	TokensUsed   int `json:"tokens_used"`
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrRaster       ErrorCode = "RASTER_ERROR"
	ErrOCR          ErrorCode = "OCR_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrOutput       ErrorCode = "OUTPUT_ERROR"
	ErrCache        ErrorCode = "CACHE_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a code, a user-facing
// message and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// IsValidPhase checks if the given phase is a valid ProcessPhase
func IsValidPhase(phase ProcessPhase) bool {
	switch phase {
	case PhaseIdle, PhaseValidating, PhaseRasterizing, PhaseRecognizing,
		PhaseTranslating, PhaseWriting, PhaseComplete, PhaseError:
		return true
	default:
		return false
	}
}
