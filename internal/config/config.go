// Package config provides configuration management for Arangr.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for Arangr.
type Config struct {
	Preview   PreviewConfig   `yaml:"preview"`
	Cache     CacheConfig     `yaml:"cache"`
	Tree      TreeConfig      `yaml:"tree"`
	Assistant AssistantConfig `yaml:"assistant"`
	Storage   StorageConfig   `yaml:"storage"`
}

// PreviewConfig configures content extraction.
type PreviewConfig struct {
	Workers        int  `yaml:"workers"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	MaxTextBytes   int  `yaml:"max_text_bytes"`
	MaxPDFPages    int  `yaml:"max_pdf_pages"`
	MaxImageDim    int  `yaml:"max_image_dim"`
	Watch          bool `yaml:"watch"`
}

// CacheConfig configures the in-memory preview cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// TreeConfig configures directory tree loading.
type TreeConfig struct {
	ShowHidden bool `yaml:"show_hidden"`
}

// AssistantConfig configures the AI file assistant.
type AssistantConfig struct {
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	MaxTokens    int    `yaml:"max_tokens"`
	ContextChars int    `yaml:"context_chars"`
}

// StorageConfig configures where data is stored.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Preview: PreviewConfig{
			Workers:        4,
			TimeoutSeconds: 30,
			MaxTextBytes:   2 << 20,
			MaxPDFPages:    5,
			MaxImageDim:    1600,
			Watch:          true,
		},
		Cache: CacheConfig{
			Capacity: 200,
		},
		Tree: TreeConfig{
			ShowHidden: false,
		},
		Assistant: AssistantConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			MaxTokens:    1000,
			ContextChars: 4000,
		},
		Storage: StorageConfig{
			Path: filepath.Join(homeDir, ".local", "share", "arangr"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Preview.Workers < 1 {
		return errors.New("preview.workers must be at least 1")
	}
	if c.Preview.TimeoutSeconds < 1 {
		return errors.New("preview.timeout_seconds must be at least 1")
	}
	if c.Preview.MaxTextBytes < 1 {
		return errors.New("preview.max_text_bytes must be at least 1")
	}
	if c.Cache.Capacity < 1 {
		return errors.New("cache.capacity must be at least 1")
	}
	if c.Assistant.MaxTokens < 1 {
		return errors.New("assistant.max_tokens must be at least 1")
	}
	if c.Assistant.ContextChars < 1 {
		return errors.New("assistant.context_chars must be at least 1")
	}
	return nil
}

// Load loads configuration from the YAML file, falling back to defaults
// for any missing values. ARANGR_API_KEY and ARANGR_BASE_URL override the
// configured assistant settings.
func Load() (*Config, error) {
	cfg := Default()

	configPath, err := ConfigPath()
	if err != nil {
		cfg.applyEnv()
		return cfg, nil // Use defaults if we can't find config dir
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil // No config file, use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("ARANGR_API_KEY"); key != "" {
		c.Assistant.APIKey = key
	}
	if url := os.Getenv("ARANGR_BASE_URL"); url != "" {
		c.Assistant.BaseURL = url
	}
}

// Save writes the configuration to the YAML file.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// ConfigDir returns the directory where config files are stored.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "arangr"), nil
}

// ConfigPath returns the path to the main config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir returns the data directory from config, creating it if needed.
func (c *Config) DataDir() (string, error) {
	if err := os.MkdirAll(c.Storage.Path, 0755); err != nil {
		return "", err
	}
	return c.Storage.Path, nil
}

// HistoryPath returns the path to the conversation history database.
func (c *Config) HistoryPath() (string, error) {
	dataDir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.db"), nil
}
