// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

const defaultJWTSecret = "devconnect-development-secret-change-me"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	CORSOrigins string   `mapstructure:"corsorigins"`

	// Session tokens
	JWTSecret         string `mapstructure:"jwtsecret"`
	TokenTTLSeconds   int    `mapstructure:"tokenttlseconds"`
	MinPasswordLength int    `mapstructure:"minpasswordlength"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	MetricsEnabled bool `mapstructure:"metricsenabled"`

	// Background jobs
	JobsEnabled        bool `mapstructure:"jobsenabled"`
	JobIntervalSeconds int  `mapstructure:"jobintervalseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "devconnect")
		v.SetDefault("appport", "5000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("corsorigins", "*")
		v.SetDefault("jwtsecret", defaultJWTSecret)
		v.SetDefault("tokenttlseconds", 360000) // 100 hours
		v.SetDefault("minpasswordlength", 6)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("metricsenabled", true)
		v.SetDefault("jobsenabled", true)
		v.SetDefault("jobintervalseconds", 300)

		v.BindEnv("appname", "DEVCONNECT_APP_NAME")
		v.BindEnv("appport", "DEVCONNECT_APP_PORT")
		v.BindEnv("environment", "DEVCONNECT_ENV")
		v.BindEnv("loglevel", "DEVCONNECT_LOG_LEVEL")
		v.BindEnv("corsorigins", "DEVCONNECT_CORS_ORIGINS")
		v.BindEnv("jwtsecret", "DEVCONNECT_JWT_SECRET")
		v.BindEnv("tokenttlseconds", "DEVCONNECT_TOKEN_TTL_SECONDS")
		v.BindEnv("minpasswordlength", "DEVCONNECT_MIN_PASSWORD_LENGTH")
		v.BindEnv("storagepath", "DEVCONNECT_STORAGE_PATH")
		v.BindEnv("logsdir", "DEVCONNECT_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "DEVCONNECT_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "DEVCONNECT_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "DEVCONNECT_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "DEVCONNECT_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "DEVCONNECT_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "DEVCONNECT_DB_MAX_IDLE_CONNS")
		v.BindEnv("metricsenabled", "DEVCONNECT_METRICS_ENABLED")
		v.BindEnv("jobsenabled", "DEVCONNECT_JOBS_ENABLED")
		v.BindEnv("jobintervalseconds", "DEVCONNECT_JOB_INTERVAL_SECONDS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()

		if cfg.JWTSecret == "" {
			log.Fatal("JWT secret is required")
		}
		if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
			log.Fatal("Production requires a unique DEVCONNECT_JWT_SECRET (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.TokenTTLSeconds <= 0 {
		return fmt.Errorf("invalid token ttl: %d", c.TokenTTLSeconds)
	}
	if c.JobIntervalSeconds <= 0 {
		return fmt.Errorf("invalid job interval: %d", c.JobIntervalSeconds)
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("invalid minimum password length: %d", c.MinPasswordLength)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns "" since the API serves no static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return "/assets"
}

// GetAppName returns the application name (implements cartridge.LogConfigProvider interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// TokenTTL returns how long an issued session token stays valid.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// JobInterval returns how often background maintenance jobs run.
func (c *Config) JobInterval() time.Duration {
	return time.Duration(c.JobIntervalSeconds) * time.Second
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1
// - Development/Production: 10
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string.
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory.
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB.
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups.
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files.
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
