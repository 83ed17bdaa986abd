package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tamilpdf/internal/types"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := m.Get()
	if cfg.Engine != DefaultEngine {
		t.Errorf("Engine = %q, want %q", cfg.Engine, DefaultEngine)
	}
	if cfg.OpenAIBaseURL != DefaultBaseURL {
		t.Errorf("OpenAIBaseURL = %q, want %q", cfg.OpenAIBaseURL, DefaultBaseURL)
	}
	if cfg.MaxChunkSize != DefaultMaxChunkSize {
		t.Errorf("MaxChunkSize = %d, want %d", cfg.MaxChunkSize, DefaultMaxChunkSize)
	}
	if cfg.OCRDPI != DefaultDPI {
		t.Errorf("OCRDPI = %d, want %d", cfg.OCRDPI, DefaultDPI)
	}
	if len(cfg.OCRLanguages) != 1 || cfg.OCRLanguages[0] != "tam" {
		t.Errorf("OCRLanguages = %v, want [tam]", cfg.OCRLanguages)
	}
}

func TestLoadInvalidJSONFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Get().OpenAIModel != DefaultOpenAIModel {
		t.Errorf("OpenAIModel = %q, want default %q", m.Get().OpenAIModel, DefaultOpenAIModel)
	}
}

func TestLoadOmittedKeysKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	// Keys absent from the file must keep their defaults, including fields
	// whose zero value differs from the default.
	if err := os.WriteFile(path, []byte(`{"engine": "openai"}`), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := m.Get()
	if !got.Preprocess {
		t.Error("Preprocess should default to true when the key is absent")
	}
	if got.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want default %v", got.Temperature, DefaultTemperature)
	}
	if got.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want default %d", got.Concurrency, DefaultConcurrency)
	}
}

func TestLoadExplicitZeroValuesHonored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path,
		[]byte(`{"temperature": 0, "preprocess": false}`), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := m.Get()
	if got.Temperature != 0 {
		t.Errorf("Temperature = %v, want explicit 0", got.Temperature)
	}
	if got.Preprocess {
		t.Error("Preprocess = true, want explicit false")
	}
}

func TestLoadFileValuesAndDefaultsForGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := types.Config{
		Engine:       "gemini",
		GeminiAPIKey: "file-key",
		MaxChunkSize: 4000,
	}
	data, _ := json.Marshal(cfg)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := m.Get()
	if got.Engine != "gemini" {
		t.Errorf("Engine = %q, want gemini", got.Engine)
	}
	if got.MaxChunkSize != 4000 {
		t.Errorf("MaxChunkSize = %d, want 4000", got.MaxChunkSize)
	}
	// Gaps filled with defaults.
	if got.GeminiModel != DefaultGeminiModel {
		t.Errorf("GeminiModel = %q, want default %q", got.GeminiModel, DefaultGeminiModel)
	}
	if got.OCRDPI != DefaultDPI {
		t.Errorf("OCRDPI = %d, want default %d", got.OCRDPI, DefaultDPI)
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data, _ := json.Marshal(types.Config{OpenAIAPIKey: "file-key", OpenAIModel: "file-model"})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvOpenAIAPIKey, "env-key")
	t.Setenv(EnvOpenAIModel, "env-model")
	t.Setenv(EnvOCRDPI, "150")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := m.Get()
	if got.OpenAIAPIKey != "env-key" {
		t.Errorf("OpenAIAPIKey = %q, want env-key", got.OpenAIAPIKey)
	}
	if got.OpenAIModel != "env-model" {
		t.Errorf("OpenAIModel = %q, want env-model", got.OpenAIModel)
	}
	if got.OCRDPI != 150 {
		t.Errorf("OCRDPI = %d, want 150", got.OCRDPI)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.Get().OpenAIAPIKey = "saved-key"
	m.Get().Concurrency = 2
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m2, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m2.Get().OpenAIAPIKey != "saved-key" {
		t.Errorf("OpenAIAPIKey = %q, want saved-key", m2.Get().OpenAIAPIKey)
	}
	if m2.Get().Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", m2.Get().Concurrency)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*types.Config)
		translate bool
		wantErr   bool
	}{
		{"ocr only needs no keys", func(c *types.Config) {}, false, false},
		{"openai translate without key", func(c *types.Config) { c.Engine = "openai" }, true, true},
		{"openai translate with key", func(c *types.Config) { c.OpenAIAPIKey = "k" }, true, false},
		{"gemini translate without key", func(c *types.Config) { c.Engine = "gemini" }, true, true},
		{"gemini translate with key", func(c *types.Config) {
			c.Engine = "gemini"
			c.GeminiAPIKey = "k"
		}, true, false},
		{"unknown engine", func(c *types.Config) { c.Engine = "llama" }, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewManager(filepath.Join(t.TempDir(), "c.json"))
			if err != nil {
				t.Fatalf("NewManager() error = %v", err)
			}
			tc.mutate(m.Get())
			err = m.Validate(tc.translate)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tc.translate, err, tc.wantErr)
			}
		})
	}
}
