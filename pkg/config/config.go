package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for reelgrab
type Config struct {
	// Extraction backend settings
	Backend BackendConfig `yaml:"backend" json:"backend"`

	// Gallery (saved media) settings
	Gallery GalleryConfig `yaml:"gallery" json:"gallery"`

	// Download history settings
	History HistoryConfig `yaml:"history" json:"history"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BackendConfig holds the extraction server endpoint and per-operation
// timeouts. Each request kind carries its own deadline.
type BackendConfig struct {
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	HealthTimeout   time.Duration `yaml:"health_timeout" json:"health_timeout"`
	InfoTimeout     time.Duration `yaml:"info_timeout" json:"info_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// GalleryConfig holds where saved videos and in-flight temp files live
type GalleryConfig struct {
	Directory     string `yaml:"directory" json:"directory"`
	TempDirectory string `yaml:"temp_directory" json:"temp_directory"`
}

// HistoryConfig holds download history persistence settings
type HistoryConfig struct {
	File       string `yaml:"file" json:"file"`
	MaxEntries int    `yaml:"max_entries" json:"max_entries"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:         "http://127.0.0.1:8000",
			HealthTimeout:   5 * time.Second,
			InfoTimeout:     15 * time.Second,
			DownloadTimeout: 120 * time.Second,
		},
		Gallery: GalleryConfig{
			Directory:     "./gallery",
			TempDirectory: "", // empty means the OS temp dir
		},
		History: HistoryConfig{
			File:       "", // empty means the platform data dir
			MaxEntries: 200,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("REELGRAB_BACKEND_URL"); baseURL != "" {
		c.Backend.BaseURL = baseURL
	}
	if galleryDir := os.Getenv("REELGRAB_GALLERY_DIR"); galleryDir != "" {
		c.Gallery.Directory = galleryDir
	}
	if historyFile := os.Getenv("REELGRAB_HISTORY_FILE"); historyFile != "" {
		c.History.File = historyFile
	}
	if maxEntries := os.Getenv("REELGRAB_HISTORY_MAX"); maxEntries != "" {
		if val, err := strconv.Atoi(maxEntries); err == nil && val > 0 {
			c.History.MaxEntries = val
		}
	}
	if logLevel := os.Getenv("REELGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".reelgrab.yaml",
		".reelgrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "reelgrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "reelgrab", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".reelgrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend base URL is required"))
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("backend base URL must be an absolute URL"))
	}
	if c.Backend.HealthTimeout <= 0 {
		errs = append(errs, errors.New("health timeout must be positive"))
	}
	if c.Backend.InfoTimeout <= 0 {
		errs = append(errs, errors.New("info timeout must be positive"))
	}
	if c.Backend.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Gallery.Directory == "" {
		errs = append(errs, errors.New("gallery directory is required"))
	}

	if c.History.MaxEntries <= 0 {
		errs = append(errs, errors.New("history max entries must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["backend-url"].(string); ok && baseURL != "" {
		c.Backend.BaseURL = baseURL
	}
	if galleryDir, ok := flags["gallery"].(string); ok && galleryDir != "" {
		c.Gallery.Directory = galleryDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".reelgrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
