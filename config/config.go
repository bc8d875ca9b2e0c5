// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/task-tracker/modules/cache"
	"github.com/joho/godotenv"
)

// Task store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Log levels.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// Config holds the settings read by main.
type Config struct {
	HTTPAddr         string
	TaskStore        string
	Cache            cache.Config
	CORSAllowOrigins string
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		HTTPAddr:         ":4000",
		TaskStore:        StoreMemory,
		Cache:            cache.DefaultConfig(),
		CORSAllowOrigins: "*",
		ShutdownTimeout:  30 * time.Second,
		LogLevel:         LogLevelInfo,
	}
}

// Load reads the environment, honouring a .env file in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	def := Default()
	cfg := Config{
		HTTPAddr:         getEnv("HTTP_ADDR", def.HTTPAddr),
		TaskStore:        strings.ToLower(getEnv("TASK_STORE", def.TaskStore)),
		Cache: cache.Config{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			Prefix:    getEnv("CACHE_PREFIX", def.Cache.Prefix),
		},
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", def.CORSAllowOrigins),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", def.LogLevel)),
	}

	var err error
	if cfg.Cache.TTL, err = getEnvDuration("CACHE_TTL", def.Cache.TTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", def.ShutdownTimeout); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and non-positive durations.
func (c Config) Validate() error {
	switch c.TaskStore {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("TASK_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.TaskStore)
	}

	switch c.LogLevel {
	case LogLevelInfo, LogLevelError:
	default:
		return fmt.Errorf("LOG_LEVEL must be %q or %q, got %q", LogLevelInfo, LogLevelError, c.LogLevel)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	return nil
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, value)
	}
	return d, nil
}
