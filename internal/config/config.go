// Package config loads server configuration from file, environment and
// defaults, in that order of increasing precedence being env > file >
// defaults, and validates the result.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `mapstructure:"listen" validate:"required"`

	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Limits   LimitsConfig   `mapstructure:"limits"`

	// Groups is the static group directory: group name -> member user
	// ids. A real deployment would point at an external directory.
	Groups map[string][]string `mapstructure:"groups"`
}

// DatabaseConfig selects the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
}

// LimitsConfig holds per-user quotas.
type LimitsConfig struct {
	// MaxBookmarksPerUser caps imports; zero disables the quota.
	MaxBookmarksPerUser int `mapstructure:"max_bookmarks_per_user" validate:"gte=0"`
}

// Load reads configuration. path may be empty, in which case only
// defaults and MARKSRV_* environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen", ":8742")
	v.SetDefault("database.path", "marksrv.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("limits.max_bookmarks_per_user", 0)

	v.SetEnvPrefix("MARKSRV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("marksrv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/marksrv")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			// No file is fine; defaults and env carry the day.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
