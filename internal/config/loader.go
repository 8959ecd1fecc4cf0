package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Default cron schedules for the background tasks. Queue dispatch must run
// at least as often as the posting-window tolerance (5 minutes) or windows
// can be missed entirely.
const (
	defaultDispatchSchedule = "*/5 * * * *"
	defaultDigestSchedule   = "0 8 * * *"
	defaultReminderSchedule = "0 20 * * *"
)

// Load reads configuration in order of precedence:
// 1. Default values
// 2. The config file at path (missing file is not an error)
// 3. BOT_* environment variables
// The result is validated before being returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Missing config file is fine, defaults plus env carry the load.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	// Zero defaults so env-only values are visible to Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("database.path", "inkroute.db")

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.timezone", "America/Vancouver")

	v.SetDefault("scheduler.tasks.queue_dispatch.enabled", true)
	v.SetDefault("scheduler.tasks.queue_dispatch.schedule", defaultDispatchSchedule)
	v.SetDefault("scheduler.tasks.daily_digest.enabled", true)
	v.SetDefault("scheduler.tasks.daily_digest.schedule", defaultDigestSchedule)
	v.SetDefault("scheduler.tasks.reminder.enabled", true)
	v.SetDefault("scheduler.tasks.reminder.schedule", defaultReminderSchedule)
}
