// Package config provides Viper-based configuration loading for the Night
// Land game service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Development enables zap development mode (DPanic panics, stack
	// traces on warnings).
	Development bool `mapstructure:"development"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// DatabaseConfig holds PostgreSQL connection settings.
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
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// URL is a redis:// connection URL.
	URL string `mapstructure:"url"`
	// KeyPrefix namespaces every key written by the service.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// SQLiteConfig holds the local database file settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig selects and configures the save-game key-value backend.
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	Postgres DatabaseConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

// GameConfig holds game content settings.
type GameConfig struct {
	// ContentDir overrides the embedded catalog when non-empty.
	ContentDir string `mapstructure:"content_dir"`
	// StartLevel is the level a new game begins on.
	StartLevel string `mapstructure:"start_level"`
	// DevMode validates every state transition and logs violations.
	DevMode bool `mapstructure:"dev_mode"`
}

// AutosaveConfig holds autosave throttling settings.
type AutosaveConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Throttle time.Duration `mapstructure:"throttle"`
}

// ScriptingConfig holds Lua level-script settings.
type ScriptingConfig struct {
	// Dir holds global *.lua scripts and per-level scripts under
	// levels/<id>/. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit bounds the work a single hook call may do.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// TransportConfig holds websocket listener settings.
type TransportConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// ReadLimit is the maximum inbound message size in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TransportConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Game      GameConfig      `mapstructure:"game"`
	Autosave  AutosaveConfig  `mapstructure:"autosave"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Transport TransportConfig `mapstructure:"transport"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateStorage(c.Storage),
		validateGame(c.Game),
		validateAutosave(c.Autosave),
		validateScripting(c.Scripting),
		validateTransport(c.Transport),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendMemory:
		return nil
	case BackendPostgres:
		return validateDatabase(s.Postgres)
	case BackendRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("storage.redis.url must not be empty")
		}
		return nil
	case BackendSQLite:
		if s.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path must not be empty")
		}
		return nil
	}
	return fmt.Errorf("storage.backend must be one of [memory, postgres, redis, sqlite], got %q", s.Backend)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "storage.postgres.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("storage.postgres.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "storage.postgres.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "storage.postgres.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("storage.postgres.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("storage.postgres.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("storage.postgres.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "storage.postgres.min_conns must not exceed storage.postgres.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	if g.StartLevel == "" {
		return fmt.Errorf("game.start_level must not be empty")
	}
	return nil
}

func validateAutosave(a AutosaveConfig) error {
	if a.Throttle < 0 {
		return fmt.Errorf("autosave.throttle must not be negative, got %s", a.Throttle)
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("transport.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadLimit < 0 {
		errs = append(errs, "transport.read_limit must not be negative")
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

	// Environment variable overrides with NIGHTLAND_ prefix
	v.SetEnvPrefix("NIGHTLAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
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

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "nightland")
	v.SetDefault("storage.postgres.password", "nightland")
	v.SetDefault("storage.postgres.name", "nightland")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.max_conns", 10)
	v.SetDefault("storage.postgres.min_conns", 2)
	v.SetDefault("storage.postgres.max_conn_lifetime", "1h")
	v.SetDefault("storage.redis.url", "redis://localhost:6379/0")
	v.SetDefault("storage.redis.key_prefix", "")
	v.SetDefault("storage.sqlite.path", "nightland.db")

	v.SetDefault("game.content_dir", "")
	v.SetDefault("game.start_level", "1")
	v.SetDefault("game.dev_mode", false)

	v.SetDefault("autosave.enabled", true)
	v.SetDefault("autosave.throttle", "2s")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("transport.host", "0.0.0.0")
	v.SetDefault("transport.port", 8080)
	v.SetDefault("transport.read_limit", 1<<20)
}
