package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"instadm/pkg/message"
)

// Config holds all configuration options for the outreach tool
type Config struct {
	// Storage paths
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Pacing between platform calls
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Outreach batch settings
	Outreach OutreachConfig `yaml:"outreach" json:"outreach"`

	// Message generation settings
	Generation GenerationConfig `yaml:"generation" json:"generation"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig holds filesystem and database paths
type StorageConfig struct {
	DataDirectory string `yaml:"data_directory" json:"data_directory"`
	DatabasePath  string `yaml:"database_path" json:"database_path"`
}

// PacingConfig holds the delay bounds between platform calls
type PacingConfig struct {
	RetrievalMin  time.Duration `yaml:"retrieval_min" json:"retrieval_min"`
	RetrievalMax  time.Duration `yaml:"retrieval_max" json:"retrieval_max"`
	GenerationMin time.Duration `yaml:"generation_min" json:"generation_min"`
	GenerationMax time.Duration `yaml:"generation_max" json:"generation_max"`
	SendMin       time.Duration `yaml:"send_min" json:"send_min"`
	SendMax       time.Duration `yaml:"send_max" json:"send_max"`
	MaxPerHour    int           `yaml:"max_per_hour" json:"max_per_hour"`
}

// UnmarshalYAML decodes pacing bounds written as duration strings ("3.5s",
// "750ms") while keeping defaults for fields the file omits.
func (p *PacingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		RetrievalMin  string `yaml:"retrieval_min"`
		RetrievalMax  string `yaml:"retrieval_max"`
		GenerationMin string `yaml:"generation_min"`
		GenerationMax string `yaml:"generation_max"`
		SendMin       string `yaml:"send_min"`
		SendMax       string `yaml:"send_max"`
		MaxPerHour    *int   `yaml:"max_per_hour"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	for _, field := range []struct {
		src string
		dst *time.Duration
	}{
		{raw.RetrievalMin, &p.RetrievalMin},
		{raw.RetrievalMax, &p.RetrievalMax},
		{raw.GenerationMin, &p.GenerationMin},
		{raw.GenerationMax, &p.GenerationMax},
		{raw.SendMin, &p.SendMin},
		{raw.SendMax, &p.SendMax},
	} {
		if field.src == "" {
			continue
		}
		d, err := time.ParseDuration(field.src)
		if err != nil {
			return fmt.Errorf("invalid pacing duration %q: %w", field.src, err)
		}
		*field.dst = d
	}
	if raw.MaxPerHour != nil {
		p.MaxPerHour = *raw.MaxPerHour
	}
	return nil
}

// MarshalYAML renders pacing bounds as duration strings.
func (p PacingConfig) MarshalYAML() (interface{}, error) {
	return map[string]interface{}{
		"retrieval_min":  p.RetrievalMin.String(),
		"retrieval_max":  p.RetrievalMax.String(),
		"generation_min": p.GenerationMin.String(),
		"generation_max": p.GenerationMax.String(),
		"send_min":       p.SendMin.String(),
		"send_max":       p.SendMax.String(),
		"max_per_hour":   p.MaxPerHour,
	}, nil
}

// OutreachConfig holds batch sizing for fetching and sending
type OutreachConfig struct {
	BatchSize    int  `yaml:"batch_size" json:"batch_size"`
	MessageLimit int  `yaml:"message_limit" json:"message_limit"`
	OnlyPublic   bool `yaml:"only_public" json:"only_public"`
}

// GenerationConfig holds the model selection and the promoted titles.
// The API key is intentionally env-only and never written to disk.
type GenerationConfig struct {
	Model  string          `yaml:"model" json:"model"`
	APIKey string          `yaml:"-" json:"-"`
	Books  message.Catalog `yaml:"books" json:"books"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDirectory: defaultDataDir(),
			DatabasePath:  filepath.Join(defaultDataDir(), "contacts.db"),
		},
		Pacing: PacingConfig{
			RetrievalMin:  3500 * time.Millisecond,
			RetrievalMax:  5500 * time.Millisecond,
			GenerationMin: 3 * time.Second,
			GenerationMax: 5 * time.Second,
			SendMin:       6 * time.Second,
			SendMax:       9 * time.Second,
			MaxPerHour:    0, // 0 means no hourly cap
		},
		Outreach: OutreachConfig{
			BatchSize:    10,
			MessageLimit: 10,
			OnlyPublic:   true,
		},
		Generation: GenerationConfig{
			Model: "gpt-4o-mini",
			Books: message.DefaultCatalog(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".instadm"
	}
	return filepath.Join(home, ".instadm")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if dir := os.Getenv("INSTADM_DATA_DIR"); dir != "" {
		c.Storage.DataDirectory = dir
		c.Storage.DatabasePath = filepath.Join(dir, "contacts.db")
	}
	if db := os.Getenv("INSTADM_DATABASE"); db != "" {
		c.Storage.DatabasePath = db
	}

	if batch := os.Getenv("INSTADM_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.Outreach.BatchSize = val
		}
	}
	if limit := os.Getenv("INSTADM_MESSAGE_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Outreach.MessageLimit = val
		}
	}
	if cap := os.Getenv("INSTADM_MAX_PER_HOUR"); cap != "" {
		var val int
		fmt.Sscanf(cap, "%d", &val)
		if val > 0 {
			c.Pacing.MaxPerHour = val
		}
	}

	if model := os.Getenv("INSTADM_MODEL"); model != "" {
		c.Generation.Model = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}

	if logLevel := os.Getenv("INSTADM_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("INSTADM_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
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
	// Check in order of precedence
	locations := []string{
		".instadm.yaml",
		".instadm.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "instadm", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "instadm", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".instadm.yaml"),
		filepath.Join(os.Getenv("HOME"), ".instadm.yml"),
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

	if c.Storage.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}

	if c.Outreach.BatchSize < 1 || c.Outreach.BatchSize > 100 {
		errs = append(errs, errors.New("batch size must be between 1 and 100"))
	}
	if c.Outreach.MessageLimit < 1 || c.Outreach.MessageLimit > 100 {
		errs = append(errs, errors.New("message limit must be between 1 and 100"))
	}
	if c.Pacing.MaxPerHour < 0 {
		errs = append(errs, errors.New("hourly cap cannot be negative"))
	}

	for _, bound := range []struct {
		name     string
		min, max time.Duration
	}{
		{"retrieval", c.Pacing.RetrievalMin, c.Pacing.RetrievalMax},
		{"generation", c.Pacing.GenerationMin, c.Pacing.GenerationMax},
		{"send", c.Pacing.SendMin, c.Pacing.SendMax},
	} {
		if bound.min < 0 || bound.max < 0 {
			errs = append(errs, fmt.Errorf("%s pacing bounds cannot be negative", bound.name))
		}
		if bound.min > bound.max {
			errs = append(errs, fmt.Errorf("%s pacing minimum exceeds maximum", bound.name))
		}
	}

	// The catalog falls back to English, so an English entry must exist.
	if _, ok := c.Generation.Books["en"]; !ok {
		errs = append(errs, errors.New(`book catalog must contain an "en" entry`))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
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

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if db, ok := flags["database"].(string); ok && db != "" {
		c.Storage.DatabasePath = db
	}
	if batch, ok := flags["batch-size"].(int); ok && batch > 0 {
		c.Outreach.BatchSize = batch
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Outreach.MessageLimit = limit
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		c.Generation.Model = model
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".instadm.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
