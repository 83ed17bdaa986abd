// Package config provides configuration management for the Tamil PDF OCR tool.
// Settings are read from an optional .env file, a JSON config file and
// environment variables, with environment variables taking precedence.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "tamilpdf-config.json"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvOpenAIModel is the environment variable name for the OpenAI model
	EnvOpenAIModel = "OPENAI_MODEL"
	// EnvGeminiAPIKey is the environment variable name for the Gemini API key
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	// EnvGeminiModel is the environment variable name for the Gemini model
	EnvGeminiModel = "GEMINI_MODEL"
	// EnvMaxChunkSize overrides the translation chunk size
	EnvMaxChunkSize = "MAX_CHUNK_SIZE"
	// EnvOCRDPI overrides the rasterization DPI
	EnvOCRDPI = "OCR_DPI"

	// DefaultBaseURL is the default OpenAI-compatible API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultOpenAIModel is the default OpenAI model for translation
	DefaultOpenAIModel = "gpt-4o"
	// DefaultGeminiModel is the default Gemini model for translation
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultEngine is the default translation engine
	DefaultEngine = "openai"
	// DefaultMaxChunkSize is the default maximum characters per translation request
	DefaultMaxChunkSize = 6000
	// DefaultRequestsPerMinute is the default API rate limit budget
	DefaultRequestsPerMinute = 15
	// DefaultTemperature is the default sampling temperature for translation
	DefaultTemperature = 0.1
	// DefaultDPI is the default rasterization resolution
	DefaultDPI = 300
	// DefaultPSM is the default Tesseract page segmentation mode (single block)
	DefaultPSM = 6
	// DefaultConcurrency is the default number of pages recognized in parallel
	DefaultConcurrency = 1
)

// Manager manages loading, merging and persisting the application configuration.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager with the specified config path. If configPath
// is empty the default path under the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "tamilpdf", DefaultConfigFileName)
	}

	logger.Debug("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		Engine:            DefaultEngine,
		OpenAIBaseURL:     DefaultBaseURL,
		OpenAIModel:       DefaultOpenAIModel,
		GeminiModel:       DefaultGeminiModel,
		MaxChunkSize:      DefaultMaxChunkSize,
		RequestsPerMinute: DefaultRequestsPerMinute,
		Temperature:       DefaultTemperature,
		DocumentMode:      false,
		OCRDPI:            DefaultDPI,
		OCRLanguages:      []string{"tam"},
		OCRPSM:            DefaultPSM,
		Preprocess:        true,
		Concurrency:       DefaultConcurrency,
	}
}

// Load loads configuration from an optional .env file in the working
// directory, then the JSON config file, then environment variable overrides.
// A missing or malformed config file falls back to defaults.
func (m *Manager) Load() error {
	// .env values become plain environment variables; existing ones win.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		// Decode over a defaults-prefilled struct so keys absent from the
		// file keep their defaults; this matters for fields whose zero
		// value is meaningful, like Preprocess and Temperature.
		cfg := defaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded",
				logger.String("path", m.configPath),
				logger.String("engine", cfg.Engine),
				logger.String("openaiModel", cfg.OpenAIModel))
			m.config = cfg
		}
	}

	m.applyDefaults()
	m.applyEnvOverrides()
	return nil
}

// applyDefaults fills zero-valued fields with defaults.
func (m *Manager) applyDefaults() {
	c := m.config
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = DefaultBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultOpenAIModel
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = DefaultMaxChunkSize
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.Temperature < 0 {
		c.Temperature = DefaultTemperature
	}
	if c.OCRDPI <= 0 {
		c.OCRDPI = DefaultDPI
	}
	if len(c.OCRLanguages) == 0 {
		c.OCRLanguages = []string{"tam"}
	}
	if c.OCRPSM <= 0 {
		c.OCRPSM = DefaultPSM
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// applyEnvOverrides lets environment variables take precedence over file values.
func (m *Manager) applyEnvOverrides() {
	c := m.config
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv(EnvOpenAIBaseURL); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv(EnvOpenAIModel); v != "" {
		c.OpenAIModel = v
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv(EnvGeminiModel); v != "" {
		c.GeminiModel = v
	}
	if v := os.Getenv(EnvMaxChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxChunkSize = n
		}
	}
	if v := os.Getenv(EnvOCRDPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.OCRDPI = n
		}
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *types.Config {
	return m.config
}

// Save writes the current configuration to the config file, creating the
// parent directory when needed.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal configuration", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Validate checks that the configuration is usable for the requested run.
// Translation credentials are only required when translate is set.
func (m *Manager) Validate(translate bool) error {
	c := m.config
	if c.Engine != "openai" && c.Engine != "gemini" {
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown translation engine", c.Engine, nil)
	}
	if !translate {
		return nil
	}
	switch c.Engine {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return types.NewAppError(types.ErrConfig,
				"OpenAI API key is not configured (set "+EnvOpenAIAPIKey+")", nil)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return types.NewAppError(types.ErrConfig,
				"Gemini API key is not configured (set "+EnvGeminiAPIKey+")", nil)
		}
	}
	return nil
}
