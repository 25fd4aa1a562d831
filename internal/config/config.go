// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Tasks    TaskConfig     `toml:"tasks"`
	Store    StoreConfig    `toml:"store"`
}

// BackendConfig holds settings for the generative model backend.
type BackendConfig struct {
	Provider          string        `toml:"provider"` // only "ollama" is built in
	BaseURL           string        `toml:"base_url"`
	Model             string        `toml:"model"`
	CallTimeout       time.Duration `toml:"call_timeout"`
	MaxAttempts       int           `toml:"max_attempts"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Accelerated       bool          `toml:"accelerated"`
}

// PipelineConfig holds settings for the analysis and synthesis pipeline.
type PipelineConfig struct {
	CloneDir                 string        `toml:"clone_dir"`
	CloneTimeout             time.Duration `toml:"clone_timeout"`
	AdvisoryFile             string        `toml:"advisory_file"`
	MaxConcurrentGenerations int           `toml:"max_concurrent_generations"`
}

// TaskConfig holds settings for the task registry.
type TaskConfig struct {
	TTL        time.Duration `toml:"ttl"`
	MaxEntries int           `toml:"max_entries"`
}

// StoreConfig holds settings for bundle persistence.
type StoreConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Provider:          "ollama",
			BaseURL:           "http://localhost:11434",
			Model:             "deepseek-coder:6.7b",
			CallTimeout:       5 * time.Minute,
			MaxAttempts:       3,
			RequestsPerSecond: 2,
		},
		Pipeline: PipelineConfig{
			CloneDir:                 os.TempDir(),
			CloneTimeout:             2 * time.Minute,
			MaxConcurrentGenerations: 2,
		},
		Tasks: TaskConfig{
			TTL:        time.Hour,
			MaxEntries: 256,
		},
		Store: StoreConfig{
			Path: ":memory:",
		},
	}
}

// Load reads the TOML config at path, applying defaults for any missing
// fields. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Backend.MaxAttempts < 1 {
		return fmt.Errorf("backend.max_attempts must be at least 1, got %d", c.Backend.MaxAttempts)
	}
	if c.Pipeline.MaxConcurrentGenerations < 1 {
		return fmt.Errorf("pipeline.max_concurrent_generations must be at least 1, got %d", c.Pipeline.MaxConcurrentGenerations)
	}
	if c.Tasks.MaxEntries < 1 {
		return fmt.Errorf("tasks.max_entries must be at least 1, got %d", c.Tasks.MaxEntries)
	}
	return nil
}
