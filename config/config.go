// Package config loads taskd settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/example/task-management-demo/database"
	domain "github.com/example/task-management-demo/domain/task"
	"github.com/example/task-management-demo/modules/auth"
	"github.com/example/task-management-demo/modules/ratelimit"
	"github.com/example/task-management-demo/modules/task"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	HTTP            HTTPConfig      `yaml:"http"`
	Database        DatabaseConfig  `yaml:"database"`
	Redis           RedisConfig     `yaml:"redis"`
	RateLimit       RateLimitConfig `yaml:"ratelimit"`
	Task            TaskConfig      `yaml:"task"`
	Auth            AuthConfig      `yaml:"auth"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Debug  bool   `yaml:"debug"`
}

// RedisConfig points at the Redis server used for rate limiting.
// An empty Addr disables rate limiting.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// RateLimitConfig configures the per-IP sliding window.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// TaskConfig holds the task defaulting policy.
type TaskConfig struct {
	DefaultStatus   string `yaml:"default_status"`
	DefaultPriority string `yaml:"default_priority"`
	ForceModifiedBy bool   `yaml:"force_modified_by"`
}

// AuthConfig configures the login stub.
type AuthConfig struct {
	AutoEnroll bool `yaml:"auto_enroll"`
	BcryptCost int  `yaml:"bcrypt_cost"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	defaults := domain.DefaultValues()
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: database.DriverSQLite,
			DSN:    "taskd.db?_busy_timeout=5000",
		},
		RateLimit: RateLimitConfig{
			Requests: ratelimit.DefaultConfig().RequestsPerWindow,
			Window:   ratelimit.DefaultConfig().WindowSize,
		},
		Task: TaskConfig{
			DefaultStatus:   defaults.Status,
			DefaultPriority: defaults.Priority,
			ForceModifiedBy: true,
		},
		Auth: AuthConfig{
			AutoEnroll: true,
			BcryptCost: 12,
		},
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTP.Port = getEnvInt("HTTP_PORT", c.HTTP.Port)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Database.Debug = getEnvBool("DB_DEBUG", c.Database.Debug)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.RateLimit.Requests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimit.Requests)
	c.RateLimit.Window = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window)
	c.Task.DefaultPriority = getEnv("DEFAULT_PRIORITY", c.Task.DefaultPriority)
	c.Task.ForceModifiedBy = getEnvBool("FORCE_MODIFIED_BY", c.Task.ForceModifiedBy)
	c.Auth.AutoEnroll = getEnvBool("AUTH_AUTO_ENROLL", c.Auth.AutoEnroll)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if !domain.IsKnownStatus(c.Task.DefaultStatus) {
		return fmt.Errorf("task.default_status %q is not a known status", c.Task.DefaultStatus)
	}
	if !domain.IsKnownPriority(c.Task.DefaultPriority) {
		return fmt.Errorf("task.default_priority %q is not a known priority", c.Task.DefaultPriority)
	}
	if c.Redis.Addr != "" {
		if c.RateLimit.Requests < 1 {
			return fmt.Errorf("ratelimit.requests must be positive, got %d", c.RateLimit.Requests)
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("ratelimit.window must be positive, got %s", c.RateLimit.Window)
		}
	}
	return nil
}

// databaseConfig returns the connection settings shared by the task and auth modules.
func (c Config) databaseConfig() database.Config {
	return database.Config{
		Driver: c.Database.Driver,
		DSN:    c.Database.DSN,
		Debug:  c.Database.Debug,
	}
}

// TaskModule returns the task module configuration.
func (c Config) TaskModule() task.Config {
	defaults := domain.DefaultValues()
	defaults.Status = c.Task.DefaultStatus
	defaults.Priority = c.Task.DefaultPriority

	return task.Config{
		Database: c.databaseConfig(),
		Service: task.ServiceConfig{
			Defaults:        defaults,
			ForceModifiedBy: c.Task.ForceModifiedBy,
		},
	}
}

// AuthModule returns the auth module configuration.
func (c Config) AuthModule() auth.Config {
	return auth.Config{
		Database:   c.databaseConfig(),
		AutoEnroll: c.Auth.AutoEnroll,
		BcryptCost: c.Auth.BcryptCost,
	}
}

// RateLimiter returns the rate limiter configuration.
func (c Config) RateLimiter() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.RequestsPerWindow = c.RateLimit.Requests
	cfg.WindowSize = c.RateLimit.Window
	return cfg
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
// Logs a warning if the value cannot be parsed as an integer.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid integer value for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid boolean value for %s: %q, using default %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns the duration value of an environment variable or a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid duration value for %s: %q, using default %s", key, value, defaultValue)
	}
	return defaultValue
}
