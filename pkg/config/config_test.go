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

	assert.Equal(t, 10, cfg.Outreach.BatchSize)
	assert.Equal(t, 10, cfg.Outreach.MessageLimit)
	assert.True(t, cfg.Outreach.OnlyPublic)
	assert.Equal(t, 6*time.Second, cfg.Pacing.SendMin)
	assert.Equal(t, 9*time.Second, cfg.Pacing.SendMax)
	assert.Equal(t, "gpt-4o-mini", cfg.Generation.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Storage.DatabasePath)
	assert.Contains(t, cfg.Generation.Books, "en")
	assert.Contains(t, cfg.Generation.Books, "es")

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"batch size too small", func(c *Config) { c.Outreach.BatchSize = 0 }},
		{"batch size too large", func(c *Config) { c.Outreach.BatchSize = 101 }},
		{"message limit too small", func(c *Config) { c.Outreach.MessageLimit = 0 }},
		{"message limit too large", func(c *Config) { c.Outreach.MessageLimit = 150 }},
		{"negative hourly cap", func(c *Config) { c.Pacing.MaxPerHour = -1 }},
		{"reversed send pacing", func(c *Config) { c.Pacing.SendMin = 10 * time.Second; c.Pacing.SendMax = time.Second }},
		{"negative retrieval pacing", func(c *Config) { c.Pacing.RetrievalMin = -time.Second }},
		{"empty database path", func(c *Config) { c.Storage.DatabasePath = "" }},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"missing english book", func(c *Config) { delete(c.Generation.Books, "en") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INSTADM_BATCH_SIZE", "25")
	t.Setenv("INSTADM_MESSAGE_LIMIT", "5")
	t.Setenv("INSTADM_MAX_PER_HOUR", "100")
	t.Setenv("INSTADM_MODEL", "gpt-4o")
	t.Setenv("INSTADM_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 25, cfg.Outreach.BatchSize)
	assert.Equal(t, 5, cfg.Outreach.MessageLimit)
	assert.Equal(t, 100, cfg.Pacing.MaxPerHour)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sk-test", cfg.Generation.APIKey)
}

func TestLoadFromEnvDataDir(t *testing.T) {
	t.Setenv("INSTADM_DATA_DIR", "/tmp/instadm-test")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/tmp/instadm-test", cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join("/tmp/instadm-test", "contacts.db"), cfg.Storage.DatabasePath)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("yaml overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
outreach:
  batch_size: 50
pacing:
  retrieval_min: 1.5s
  retrieval_max: 2.5s
  max_per_hour: 80
generation:
  model: gpt-4o
  books:
    en:
      title: "Another Book"
      link: "https://example.com/book"
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))

		assert.Equal(t, 50, cfg.Outreach.BatchSize)
		assert.Equal(t, 1500*time.Millisecond, cfg.Pacing.RetrievalMin)
		assert.Equal(t, 2500*time.Millisecond, cfg.Pacing.RetrievalMax)
		assert.Equal(t, 80, cfg.Pacing.MaxPerHour)
		// Omitted pacing fields keep their defaults.
		assert.Equal(t, 6*time.Second, cfg.Pacing.SendMin)
		assert.Equal(t, "gpt-4o", cfg.Generation.Model)
		assert.Equal(t, "Another Book", cfg.Generation.Books["en"].Title)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("pacing:\n  send_min: fast\n"), 0600))

		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(path))
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"database":   "/tmp/other.db",
		"batch-size": 30,
		"limit":      3,
		"model":      "gpt-4o",
		"log-level":  "debug",
	})

	assert.Equal(t, "/tmp/other.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 30, cfg.Outreach.BatchSize)
	assert.Equal(t, 3, cfg.Outreach.MessageLimit)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outreach:\n  batch_size: 40\nlogging:\n  level: warn\n"), 0600))

	t.Setenv("INSTADM_BATCH_SIZE", "60")

	// Flags beat env, env beats file.
	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Outreach.BatchSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved", "config.yaml")

	cfg := DefaultConfig()
	cfg.Outreach.BatchSize = 33
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 33, loaded.Outreach.BatchSize)
	assert.Equal(t, cfg.Pacing.SendMin, loaded.Pacing.SendMin)
}
