// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Content       ContentConfig      `mapstructure:"content"`
	Server        ServerConfig       `mapstructure:"server"`
	RateLimit     RateLimitConfig    `mapstructure:"rate_limit"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Search        SearchConfig       `mapstructure:"search"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ContentConfig locates the record collection and the published artifacts.
type ContentConfig struct {
	RecordsDir    string `mapstructure:"records_dir"`
	ProposalsDir  string `mapstructure:"proposals_dir"`
	IndexArtifact string `mapstructure:"index_artifact"`
	StatsArtifact string `mapstructure:"stats_artifact"`
}

// ServerConfig holds the submission API settings.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	CSRFCookieName  string `mapstructure:"csrf_cookie_name"`
	CSRFHeaderName  string `mapstructure:"csrf_header_name"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// RateLimitConfig bounds submissions per identity per rolling window.
type RateLimitConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
	Limit   int    `mapstructure:"limit"`
	Window  int    `mapstructure:"window"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SearchConfig holds settings for the optional Elasticsearch publisher.
type SearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	IndexName  string   `mapstructure:"index_name"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

// NotificationConfig holds settings for maintainer notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate checks the fields every run depends on.
func (c *Config) Validate() error {
	if c.Content.RecordsDir == "" {
		return fmt.Errorf("content.records_dir is required")
	}
	if c.Content.IndexArtifact == "" {
		return fmt.Errorf("content.index_artifact is required")
	}
	if c.Content.StatsArtifact == "" {
		return fmt.Errorf("content.stats_artifact is required")
	}
	if c.RateLimit.Backend == "redis" && c.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when rate_limit.backend is redis")
	}
	if c.Search.Enabled && len(c.Search.Addresses) == 0 {
		return fmt.Errorf("search.addresses is required when search.enabled is true")
	}
	return nil
}
