// Package config loads service configuration from the environment, with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/outlinexl/internal/extract"
)

type Config struct {
	Port string

	// Auth. Empty disables authentication.
	APIKey string

	// Worker pool for async conversions.
	WorkerCount  int
	MaxQueueSize int

	// Upload limits.
	MaxUploadBytes int64

	// Job state.
	JobTTL time.Duration

	// Conversion.
	PDFEngine  extract.PDFEngine
	SheetTitle string
}

// Load reads configuration from environment variables, then overlays the
// YAML file named by OUTLINEXL_CONFIG if set.
func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("OUTLINEXL_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFEngine:  extract.PDFEngine(envOr("PDF_ENGINE", string(extract.EngineAuto))),
		SheetTitle: os.Getenv("SHEET_TITLE"),
	}

	if path := os.Getenv("OUTLINEXL_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

// fileConfig mirrors Config for the YAML overlay; pointer fields distinguish
// "absent" from zero values.
type fileConfig struct {
	Port           *string        `yaml:"port"`
	APIKey         *string        `yaml:"api_key"`
	WorkerCount    *int           `yaml:"worker_count"`
	MaxQueueSize   *int           `yaml:"max_queue_size"`
	MaxUploadBytes *int64         `yaml:"max_upload_bytes"`
	JobTTL         *time.Duration `yaml:"job_ttl"`
	PDFEngine      *string        `yaml:"pdf_engine"`
	SheetTitle     *string        `yaml:"sheet_title"`
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.APIKey != nil {
		c.APIKey = *fc.APIKey
	}
	if fc.WorkerCount != nil {
		c.WorkerCount = *fc.WorkerCount
	}
	if fc.MaxQueueSize != nil {
		c.MaxQueueSize = *fc.MaxQueueSize
	}
	if fc.MaxUploadBytes != nil {
		c.MaxUploadBytes = *fc.MaxUploadBytes
	}
	if fc.JobTTL != nil {
		c.JobTTL = *fc.JobTTL
	}
	if fc.PDFEngine != nil {
		c.PDFEngine = extract.PDFEngine(*fc.PDFEngine)
	}
	if fc.SheetTitle != nil {
		c.SheetTitle = *fc.SheetTitle
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if !c.PDFEngine.Valid() {
		return fmt.Errorf("unknown pdf engine %q (want auto, pdftext or pdfcpu)", c.PDFEngine)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
