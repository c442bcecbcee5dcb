package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig identifies the backend this console talks to.
type ServerConfig struct {
	// BaseURL is the root URL of the marketplace API
	// (e.g. https://api.mecha.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UserID is the identity of the signed-in moderator. It names the
	// user-scoped push channel and the read-all endpoint.
	UserID string `mapstructure:"user_id" yaml:"user_id"`
}

// FeedConfig holds feed and presentation tuning.
type FeedConfig struct {
	// PageSize is the fixed history page size.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// HighlightMs is how long a just-updated table row stays
	// highlighted, in milliseconds.
	HighlightMs int `mapstructure:"highlight_ms" yaml:"highlight_ms"`
}

// PushConfig holds the websocket reconnect policy.
type PushConfig struct {
	// MaxRetries bounds reconnect attempts after an unexpected
	// disconnect. Once exhausted the feed is marked stale; a manual
	// refresh reconnects.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RetryDelayMs is the fixed delay between reconnect attempts.
	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// AlertConfig remembers the user's terminal-bell decision.
type AlertConfig struct {
	// Permission is "", "granted", or "denied". Empty means the user
	// has not been asked yet; a denial is never re-asked.
	Permission string `mapstructure:"permission" yaml:"permission"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Feed   FeedConfig   `mapstructure:"feed" yaml:"feed"`
	Push   PushConfig   `mapstructure:"push" yaml:"push"`
	Alert  AlertConfig  `mapstructure:"alert" yaml:"alert"`
}

// WebSocketURL derives the push endpoint from the API base URL.
func (c ServerConfig) WebSocketURL() string {
	u := strings.TrimRight(c.BaseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// HighlightDuration returns the row highlight lifetime.
func (c FeedConfig) HighlightDuration() time.Duration {
	return time.Duration(c.HighlightMs) * time.Millisecond
}

// RetryDelay returns the fixed reconnect delay.
func (c PushConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/auction-console/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "auction-console", "config.yaml")
}

// DefaultStatePath returns the default path for the read-state database,
// located at ~/.local/share/auction-console/readstate.db.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "readstate.db")
	}
	return filepath.Join(home, ".local", "share", "auction-console", "readstate.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Feed: FeedConfig{
			PageSize:    20,
			HighlightMs: 2000,
		},
		Push: PushConfig{
			MaxRetries:   5,
			RetryDelayMs: 1000,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("feed.page_size", 20)
	v.SetDefault("feed.highlight_ms", 2000)
	v.SetDefault("push.max_retries", 5)
	v.SetDefault("push.retry_delay_ms", 1000)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = 20
	}
	if cfg.Feed.HighlightMs <= 0 {
		cfg.Feed.HighlightMs = 2000
	}
	if cfg.Push.MaxRetries <= 0 {
		cfg.Push.MaxRetries = 5
	}
	if cfg.Push.RetryDelayMs <= 0 {
		cfg.Push.RetryDelayMs = 1000
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("feed", cfg.Feed)
	v.Set("push", cfg.Push)
	v.Set("alert", cfg.Alert)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
