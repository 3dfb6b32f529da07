package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

const DefaultPath = "config.yaml"

var ErrMissingConfig = errors.New("config file not found")

type Config struct {
	APIBaseURL string         `yaml:"api_base_url"`
	ListenAddr string         `yaml:"listen_addr"`
	Storage    StorageConfig  `yaml:"storage"`
	Log        LogConfig      `yaml:"log"`
	Reminders  ReminderConfig `yaml:"reminders"`
	Insight    InsightConfig  `yaml:"insight"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // bolt, sqlite or memory
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ReminderConfig struct {
	Interval     time.Duration `yaml:"interval"`
	ResendAPIKey string        `yaml:"resend_api_key"`
	NotifyEmail  string        `yaml:"notify_email"`
	FromEmail    string        `yaml:"from_email"`
}

type InsightConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		APIBaseURL: "http://localhost:8080",
		ListenAddr: ":8080",
		Storage: StorageConfig{
			Backend: "bolt",
			Path:    "habitflow.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reminders: ReminderConfig{
			Interval:  time.Minute,
			FromEmail: "onboarding@resend.dev",
		},
		Insight: InsightConfig{
			Model:   "gemini-3-flash-preview",
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads the config file named by HABITFLOW_CONFIG, or config.yaml.
// A missing default file yields the defaults; a missing file that was
// asked for explicitly is an error.
func Load() (*Config, error) {
	path := os.Getenv("HABITFLOW_CONFIG")
	return LoadFile(path, path != "")
}

func LoadFile(path string, required bool) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if required {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "bolt", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for backend %q", c.Storage.Backend)
	}
	if c.Reminders.Interval <= 0 {
		return fmt.Errorf("reminder interval must be positive")
	}
	if c.Insight.Timeout <= 0 {
		return fmt.Errorf("insight timeout must be positive")
	}
	return nil
}

func applyEnv(c *Config) {
	c.APIBaseURL = getenv("HABITFLOW_API_BASE", c.APIBaseURL)
	c.ListenAddr = getenv("HABITFLOW_LISTEN_ADDR", c.ListenAddr)
	c.Storage.Backend = getenv("HABITFLOW_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Path = getenv("HABITFLOW_DB_PATH", c.Storage.Path)
	c.Log.Level = getenv("HABITFLOW_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("HABITFLOW_LOG_FORMAT", c.Log.Format)
	c.Log.File = getenv("HABITFLOW_LOG_FILE", c.Log.File)
	c.Reminders.ResendAPIKey = getenv("HABITFLOW_RESEND_API_KEY", c.Reminders.ResendAPIKey)
	c.Reminders.NotifyEmail = getenv("HABITFLOW_NOTIFY_EMAIL", c.Reminders.NotifyEmail)
	c.Insight.APIKey = getenv("HABITFLOW_GEMINI_API_KEY", c.Insight.APIKey)
	c.Insight.Model = getenv("HABITFLOW_GEMINI_MODEL", c.Insight.Model)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
