// Package config loads process configuration from defaults, an optional
// config file, and LOOMPLAN_-prefixed environment variables, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	// Store holds the local state database settings.
	Store StoreConfig `mapstructure:"store"`

	// Server holds the HTTP API settings.
	Server ServerConfig `mapstructure:"server"`

	// Logging holds the logger settings.
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig locates the planning state database.
type StoreConfig struct {
	// Path is the SQLite database file path.
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Token is the shared secret clients present in X-Token. The API
	// refuses to serve authenticated routes while it is unset.
	Token string `mapstructure:"token"`

	// RateLimit is the per-client request budget in requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// LoggingConfig configures the loggers.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load resolves configuration. An empty file path skips file loading;
// a non-empty path must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LOOMPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.token", "")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("logging.level", "info")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "loomplan.db"
	}
	return filepath.Join(home, ".loomplan", "loomplan.db")
}
