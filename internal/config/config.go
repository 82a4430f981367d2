// Package config provides Viper-based configuration loading for the battle core.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the persistent
// hero and inventory stores.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds pacing and balance knobs for the battle session.
// Timer values are tick counts at the driver's fixed step rate; they
// sequence presentation only and never change resolution results.
type BattleConfig struct {
	// IntroTicks is how long the session holds in the intro state.
	IntroTicks int `mapstructure:"intro_ticks"`
	// ActTicks is the pause before an action resolves.
	ActTicks int `mapstructure:"act_ticks"`
	// ResolveTicks is the pause after resolution before the next turn.
	ResolveTicks int `mapstructure:"resolve_ticks"`
	// OutcomeTicks is the pause on the victory/defeat/level-up screens.
	OutcomeTicks int `mapstructure:"outcome_ticks"`
	// DefeatSeverity scales the defeat HP penalty, 0 (mild) to 5 (harsh).
	DefeatSeverity int `mapstructure:"defeat_severity"`
}

// ContentConfig holds paths to the static game data files.
type ContentConfig struct {
	// EnemiesPath is the YAML file defining the normal enemy roster.
	EnemiesPath string `mapstructure:"enemies_path"`
	// BossesPath is the YAML file defining the boss roster.
	BossesPath string `mapstructure:"bosses_path"`
	// ItemsPath is the YAML file defining the usable item catalog.
	ItemsPath string `mapstructure:"items_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.IntroTicks < 0 {
		errs = append(errs, fmt.Sprintf("battle.intro_ticks must be >= 0, got %d", b.IntroTicks))
	}
	if b.ActTicks < 0 {
		errs = append(errs, fmt.Sprintf("battle.act_ticks must be >= 0, got %d", b.ActTicks))
	}
	if b.ResolveTicks < 0 {
		errs = append(errs, fmt.Sprintf("battle.resolve_ticks must be >= 0, got %d", b.ResolveTicks))
	}
	if b.OutcomeTicks < 0 {
		errs = append(errs, fmt.Sprintf("battle.outcome_ticks must be >= 0, got %d", b.OutcomeTicks))
	}
	if b.DefeatSeverity < 0 || b.DefeatSeverity > 5 {
		errs = append(errs, fmt.Sprintf("battle.defeat_severity must be 0-5, got %d", b.DefeatSeverity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.EnemiesPath == "" {
		errs = append(errs, "content.enemies_path must not be empty")
	}
	if c.BossesPath == "" {
		errs = append(errs, "content.bosses_path must not be empty")
	}
	if c.ItemsPath == "" {
		errs = append(errs, "content.items_path must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKYQUEST_ prefix
	v.SetEnvPrefix("SKYQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skyquest")
	v.SetDefault("database.password", "skyquest")
	v.SetDefault("database.name", "skyquest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.intro_ticks", 30)
	v.SetDefault("battle.act_ticks", 12)
	v.SetDefault("battle.resolve_ticks", 16)
	v.SetDefault("battle.outcome_ticks", 45)
	v.SetDefault("battle.defeat_severity", 2)

	v.SetDefault("content.enemies_path", "content/enemies.yaml")
	v.SetDefault("content.bosses_path", "content/bosses.yaml")
	v.SetDefault("content.items_path", "content/items.yaml")
}
