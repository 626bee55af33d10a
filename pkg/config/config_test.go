package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.HealthTimeout)
	assert.Equal(t, 15*time.Second, cfg.Backend.InfoTimeout)
	assert.Equal(t, 120*time.Second, cfg.Backend.DownloadTimeout)
	assert.Equal(t, 200, cfg.History.MaxEntries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REELGRAB_BACKEND_URL", "http://backend.local:9000")
	t.Setenv("REELGRAB_GALLERY_DIR", "/videos")
	t.Setenv("REELGRAB_HISTORY_MAX", "50")
	t.Setenv("REELGRAB_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://backend.local:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "/videos", cfg.Gallery.Directory)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidMax(t *testing.T) {
	t.Setenv("REELGRAB_HISTORY_MAX", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 200, cfg.History.MaxEntries)
}

func TestLoadFromFile(t *testing.T) {
	content := `
backend:
  base_url: http://file.local:8100
gallery:
  directory: /tmp/reels
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://file.local:8100", cfg.Backend.BaseURL)
	assert.Equal(t, "/tmp/reels", cfg.Gallery.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 120*time.Second, cfg.Backend.DownloadTimeout)
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: ["), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base URL", func(c *Config) { c.Backend.BaseURL = "" }},
		{"relative base URL", func(c *Config) { c.Backend.BaseURL = "localhost:8000" }},
		{"zero health timeout", func(c *Config) { c.Backend.HealthTimeout = 0 }},
		{"negative download timeout", func(c *Config) { c.Backend.DownloadTimeout = -time.Second }},
		{"missing gallery dir", func(c *Config) { c.Gallery.Directory = "" }},
		{"zero history cap", func(c *Config) { c.History.MaxEntries = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateJoinsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.BaseURL = ""
	cfg.Gallery.Directory = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend base URL is required")
	assert.Contains(t, err.Error(), "gallery directory is required")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"backend-url": "http://flag.local:8200",
		"gallery":     "/flagged",
		"log-level":   "error",
	})

	assert.Equal(t, "http://flag.local:8200", cfg.Backend.BaseURL)
	assert.Equal(t, "/flagged", cfg.Gallery.Directory)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	content := `
backend:
  base_url: http://file.local:8100
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("REELGRAB_BACKEND_URL", "http://env.local:8300")

	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)

	// Env beats file, flags beat both.
	assert.Equal(t, "http://env.local:8300", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = "http://saved.local:8400"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "http://saved.local:8400", loaded.Backend.BaseURL)
}
