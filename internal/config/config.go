// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`
	Messages MessagesConfig `mapstructure:"messages" yaml:"messages"`
}

// DatabaseConfig locates the database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty = XDG data dir
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json, console
}

// BackupConfig contains backup export options.
type BackupConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MessagesConfig selects the language used before settings can be read.
type MessagesConfig struct {
	DefaultLanguage string `mapstructure:"default_language" yaml:"default_language"` // en, vi
}

// EnvPrefix prefixes environment overrides, e.g. TASKNEST_DATABASE_PATH.
const EnvPrefix = "TASKNEST"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Backup: BackupConfig{
			Dir: ".",
		},
		Messages: MessagesConfig{
			DefaultLanguage: "en",
		},
	}
}

// Load reads an optional .env file, then the config file at path (when not
// empty), then TASKNEST_* environment variables, over the defaults.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("backup.dir", cfg.Backup.Dir)
	v.SetDefault("messages.default_language", cfg.Messages.DefaultLanguage)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate validates the configuration.
func Validate(cfg *Config) []error {
	var errs []error

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", cfg.Logging.Level))
	}

	validFormats := map[string]bool{
		"json": true, "console": true,
	}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Errorf("invalid log format: %s (valid: json, console)", cfg.Logging.Format))
	}

	validLanguages := map[string]bool{
		"en": true, "vi": true,
	}
	if !validLanguages[cfg.Messages.DefaultLanguage] {
		errs = append(errs, fmt.Errorf("invalid default language: %s (valid: en, vi)", cfg.Messages.DefaultLanguage))
	}

	return errs
}
