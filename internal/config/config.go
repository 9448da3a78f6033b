package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"`                     // HTTP server port (default: 8080)
	BaseURL                string `mapstructure:"base_url"`                 // Base URL used to build short links
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"` // Grace period for in-flight requests
}

// DatabaseConfig holds datastore settings.
type DatabaseConfig struct {
	// DSN is a SQLite file path, or a libsql:// / wss:// URL for a remote libsql server.
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// AnalyticsConfig configures the click pipeline.
type AnalyticsConfig struct {
	BufferSize  int  `mapstructure:"buffer_size"`  // Size of the click event channel buffer
	WorkerCount int  `mapstructure:"worker_count"` // Number of worker goroutines recording clicks
	Async       bool `mapstructure:"async"`        // Record clicks through the worker pool instead of inline
}

// ReclaimerConfig configures the expiry sweep.
type ReclaimerConfig struct {
	IntervalSeconds int  `mapstructure:"interval_seconds"`
	BatchSize       int  `mapstructure:"batch_size"`
	LazyDelete      bool `mapstructure:"lazy_delete"` // Resolver deletes expired links it meets
}

// LinksConfig holds creation defaults.
type LinksConfig struct {
	CodeLength             int `mapstructure:"code_length"`
	MaxRetries             int `mapstructure:"max_retries"`
	DefaultValiditySeconds int `mapstructure:"default_validity_seconds"`
	HistoryLimit           int `mapstructure:"history_limit"`
}

// AuthConfig holds the bearer token verification secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Config represents the whole application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Reclaimer ReclaimerConfig `mapstructure:"reclaimer"`
	Links     LinksConfig     `mapstructure:"links"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// SweepInterval returns the reclaimer period.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Reclaimer.IntervalSeconds) * time.Second
}

// DefaultValidity returns the lifetime given to links created without an explicit validity.
func (c *Config) DefaultValidity() time.Duration {
	return time.Duration(c.Links.DefaultValiditySeconds) * time.Second
}

// ShutdownTimeout returns the HTTP graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0:
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	case c.Database.DSN == "":
		return fmt.Errorf("database.dsn must not be empty")
	case c.Analytics.WorkerCount <= 0:
		return fmt.Errorf("analytics.worker_count must be positive, got %d", c.Analytics.WorkerCount)
	case c.Analytics.BufferSize < 0:
		return fmt.Errorf("analytics.buffer_size must not be negative, got %d", c.Analytics.BufferSize)
	case c.Reclaimer.IntervalSeconds <= 0:
		return fmt.Errorf("reclaimer.interval_seconds must be positive, got %d", c.Reclaimer.IntervalSeconds)
	case c.Reclaimer.BatchSize <= 0:
		return fmt.Errorf("reclaimer.batch_size must be positive, got %d", c.Reclaimer.BatchSize)
	case c.Links.CodeLength <= 0:
		return fmt.Errorf("links.code_length must be positive, got %d", c.Links.CodeLength)
	case c.Links.MaxRetries <= 0:
		return fmt.Errorf("links.max_retries must be positive, got %d", c.Links.MaxRetries)
	case c.Links.DefaultValiditySeconds <= 0:
		return fmt.Errorf("links.default_validity_seconds must be positive, got %d", c.Links.DefaultValiditySeconds)
	case c.Links.HistoryLimit <= 0:
		return fmt.Errorf("links.history_limit must be positive, got %d", c.Links.HistoryLimit)
	}
	return nil
}

// setDefaults registers every default value on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("database.dsn", "url_shortener.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("analytics.buffer_size", 1000)
	v.SetDefault("analytics.worker_count", 5)
	v.SetDefault("analytics.async", true)
	v.SetDefault("reclaimer.interval_seconds", 60)
	v.SetDefault("reclaimer.batch_size", 500)
	v.SetDefault("reclaimer.lazy_delete", true)
	v.SetDefault("links.code_length", 8)
	v.SetDefault("links.max_retries", 5)
	v.SetDefault("links.default_validity_seconds", 30)
	v.SetDefault("links.history_limit", 50)
	v.SetDefault("auth.jwt_secret", "your-secret-key")
}

// LoadConfig loads the configuration from ./configs/config.yaml (or ./config.yaml),
// the environment and a local .env file, on top of the defaults.
func LoadConfig() (*Config, error) {
	return Load("./configs", ".")
}

// Load is LoadConfig with explicit search paths for the config file.
func Load(paths ...string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	// e.g. "database.dsn" becomes "DATABASE_DSN"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB DSN=%s, Analytics Buffer=%d, Sweep Interval=%v, Lazy Delete=%t",
		cfg.Server.Port, cfg.Database.DSN, cfg.Analytics.BufferSize, cfg.SweepInterval(), cfg.Reclaimer.LazyDelete)

	return &cfg, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}
