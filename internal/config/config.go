// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the full application configuration. It is constructed once
// at startup and passed by reference into every component; core logic never
// reads configuration from the environment directly.
type Config struct {
	Log       LogConfig                 `mapstructure:"log"`
	Telegram  TelegramConfig            `mapstructure:"telegram"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Content   ContentConfig             `mapstructure:"content"`
	Platforms map[string]PlatformConfig `mapstructure:"platforms" validate:"dive"`
	Scheduler SchedulerConfig           `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and the single authorized user.
// Messages from any other sender are silently ignored.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`
}

// DatabaseConfig points at the SQLite database file backing the queue,
// untagged-thought, and bot-state stores.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ContentConfig controls where markdown documents are written and which
// local time zone dates and timestamps are computed in.
type ContentConfig struct {
	Dir      string `mapstructure:"dir"      validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// PlatformConfig describes one social platform: whether its queue is drained,
// at which times of day, and the credentials its posting adapter needs.
// Credential fields are adapter-specific; unused fields stay empty.
type PlatformConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Windows []string `mapstructure:"windows" validate:"dive,datetime=15:04"`

	InstanceURL string `mapstructure:"instance_url"` // mastodon
	AccessToken string `mapstructure:"access_token"` // mastodon, threads
	UserID      string `mapstructure:"user_id"`      // threads
	ChannelID   int64  `mapstructure:"channel_id"`   // telegram
}

// SchedulerConfig holds the cron-style schedules for background tasks,
// keyed by task name (queue_dispatch, daily_digest, reminder).
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Validate checks structural constraints and that the configured time zone
// actually loads.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Content.Timezone); err != nil {
		return fmt.Errorf("invalid content.timezone %q: %w", c.Content.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone. Validate has already confirmed
// it loads, so failures here indicate the config was mutated after loading.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Content.Timezone)
}
