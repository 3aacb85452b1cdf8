// Package config loads the bot configuration from the process environment,
// with an optional YAML overlay for the menu, phrase table, and database
// property mapping.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is built once at startup and passed by reference into the
// components that need it. Nothing reads the environment after Load.
type Config struct {
	// Viber
	ViberToken string `env:"VIBER_TOKEN,required"`

	// Notion
	NotionToken      string `env:"NOTION_TOKEN,required"`
	NotionDatabaseID string `env:"NOTION_DATABASE_ID,required"`

	// Allow-list of Viber sender IDs. Empty authorizes nobody.
	AuthorizedUserIDs []string `env:"AUTHORIZED_USER_IDS" envSeparator:","`

	// Optional AI analysis. Empty key disables the action.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIAPIBase string `env:"OPENAI_API_BASE"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// HTTP server
	Port        int    `env:"PORT" envDefault:"5000"`
	WebhookPath string `env:"WEBHOOK_PATH" envDefault:"/webhook"`

	// Outbound call budget. One attempt per call, no retries.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Price broadcast loop. Zero disables it.
	BroadcastInterval time.Duration `env:"BROADCAST_INTERVAL" envDefault:"0"`

	// Audit log database. Empty disables auditing.
	AuditDBPath string `env:"AUDIT_DB_PATH" envDefault:"cryptobot.db"`

	// Optional YAML file overriding menus, phrases, and property names.
	MenuFile string `env:"CRYPTOBOT_MENU_FILE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the env tags cannot express.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with /, got %q", c.WebhookPath)
	}
	if c.BroadcastInterval < 0 {
		return fmt.Errorf("BROADCAST_INTERVAL must not be negative")
	}
	// A broadcast shorter than the request timeout would overlap itself.
	if c.BroadcastInterval > 0 && c.BroadcastInterval < 10*time.Second {
		return fmt.Errorf("BROADCAST_INTERVAL must be at least 10s, got %s", c.BroadcastInterval)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
