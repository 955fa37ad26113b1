package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is loaded.
const (
	EnvOCRLanguage = "BANKPDF_OCR_LANG"
	EnvTesseract   = "BANKPDF_TESSERACT"
	EnvPdftoppm    = "BANKPDF_PDFTOPPM"
	EnvWorkers     = "BANKPDF_WORKERS"
	EnvLogLevel    = "BANKPDF_LOG_LEVEL"
)

// Config represents the top-level bankpdf.yaml configuration.
type Config struct {
	OCR        OCRConfig        `yaml:"ocr"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Cache      CacheConfig      `yaml:"cache"`
	Workers    int              `yaml:"workers"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// OCRConfig controls rasterizing and recognition.
type OCRConfig struct {
	Language  string        `yaml:"language"`
	DPI       int           `yaml:"dpi,omitempty"` // 0 leaves pdftoppm's default
	Timeout   time.Duration `yaml:"timeout"`
	Tesseract string        `yaml:"tesseract,omitempty"` // empty searches PATH
	Pdftoppm  string        `yaml:"pdftoppm,omitempty"`
	Enhance   bool          `yaml:"enhance"`
}

// ExtractionConfig controls the native-text fallback.
type ExtractionConfig struct {
	MinNativeChars int `yaml:"min_native_chars"`
}

// CacheConfig sizes the in-process extraction cache. Size 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size"`
}

// OutputConfig sets export defaults.
type OutputConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a bankpdf.yaml file from disk. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except an empty path yields Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		OCR: OCRConfig{
			Language: "eng",
			Timeout:  2 * time.Minute,
			Enhance:  true,
		},
		Extraction: ExtractionConfig{
			MinNativeChars: 100,
		},
		Cache: CacheConfig{
			Size: 32,
		},
		Workers: 1,
		Output: OutputConfig{
			Format: "csv",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overrides fields from BANKPDF_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvOCRLanguage); v != "" {
		c.OCR.Language = v
	}
	if v := getenv(EnvTesseract); v != "" {
		c.OCR.Tesseract = v
	}
	if v := getenv(EnvPdftoppm); v != "" {
		c.OCR.Pdftoppm = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: want a positive integer, got %q", EnvWorkers, v)
		}
		c.Workers = n
	}
	return nil
}
