// Package config reads the service configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment the service runs in
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment accepts the short and long spelling of each environment
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	// Learned mapping storage
	StoreBackend      string
	DatabaseURL       string
	DBAutoMigrate     bool
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnTimeout     time.Duration

	// Engine
	MaxNameLength      int // Longest accepted medication name, in characters
	AggregateMaxNames  int // Largest accepted aggregation batch
	AggregateWorkers   int // Concurrent resolutions per aggregation
	SplitMaxDepth      int // Compound splitting depth, 0 disables it
	UsageRecordTimeout time.Duration
	UnidentifiedLabel  string
	UnclassifiedLabel  string

	// Analytics snapshot
	StatsIntervalMinutes int
	StaleMappingDays     int // Active mappings unused for this long are reported as stale
}

// Load reads the environment, applies defaults and validates the result
func Load() (*Config, error) {
	env, err := ParseEnvironment(envString("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:              envString("PORT", "8000"),
		Address:           envString("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          envString("LOG_LEVEL", "info"),
		LogRetentionWeeks: envValue("LOG_RETENTION_WEEKS", 4, strconv.Atoi),
		MaxLogFileSize:    envValue("MAX_LOG_FILE_SIZE", 100*mb, parseInt64),
		MaxRequestBody:    envValue("MAX_REQUEST_BODY", 2*mb, parseInt64),
		MaxHeaderSize:     envValue("MAX_HEADER_SIZE", 1*mb, parseInt64),

		StoreBackend:      strings.ToLower(envString("STORE_BACKEND", StoreMemory)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBAutoMigrate:     envValue("DB_AUTO_MIGRATE", true, strconv.ParseBool),
		DBMaxOpenConns:    envValue("DB_MAX_OPEN_CONNS", 10, strconv.Atoi),
		DBMaxIdleConns:    envValue("DB_MAX_IDLE_CONNS", 5, strconv.Atoi),
		DBConnMaxLifetime: envValue("DB_CONN_MAX_LIFETIME", 15*time.Minute, time.ParseDuration),
		DBConnTimeout:     envValue("DB_CONN_TIMEOUT", 5*time.Second, time.ParseDuration),

		MaxNameLength:      envValue("MAX_NAME_LENGTH", 200, strconv.Atoi),
		AggregateMaxNames:  envValue("AGGREGATE_MAX_NAMES", 50000, strconv.Atoi),
		AggregateWorkers:   envValue("AGGREGATE_WORKERS", 8, strconv.Atoi),
		SplitMaxDepth:      envValue("SPLIT_MAX_DEPTH", 1, strconv.Atoi),
		UsageRecordTimeout: envValue("USAGE_RECORD_TIMEOUT", 2*time.Second, time.ParseDuration),
		UnidentifiedLabel:  envString("UNIDENTIFIED_LABEL", "Não identificado"),
		UnclassifiedLabel:  envString("UNCLASSIFIED_LABEL", "Não classificado"),

		StatsIntervalMinutes: envValue("STATS_INTERVAL_MINUTES", 15, strconv.Atoi),
		StaleMappingDays:     envValue("STALE_MAPPING_DAYS", 90, strconv.Atoi),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// StaleAfter is the inactivity window after which an active mapping is stale
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleMappingDays) * 24 * time.Hour
}

const mb = 1024 * 1024

var logLevels = []string{"debug", "info", "warn", "error"}

// validateConfig runs every check in order and reports the first failure,
// prefixed with the variable it concerns.
func validateConfig(cfg *Config) error {
	checks := []struct {
		name string
		err  error
	}{
		{"PORT", validatePort(cfg.Port)},
		{"ADDRESS", validateAddress(cfg.Address)},
		{"LOG_LEVEL", validateLogLevel(cfg.LogLevel)},
		{"MAX_REQUEST_BODY", inRange(cfg.MaxRequestBody, 1, 100*mb)},
		{"MAX_HEADER_SIZE", inRange(cfg.MaxHeaderSize, 1, 100*mb)},
		{"LOG_RETENTION_WEEKS", inRange(cfg.LogRetentionWeeks, 1, 52)},
		{"MAX_LOG_FILE_SIZE", inRange(cfg.MaxLogFileSize, 1*mb, 1024*mb)},
		{"STORE_BACKEND", validateStore(cfg.StoreBackend, cfg.DatabaseURL)},
		{"DB_MAX_OPEN_CONNS", inRange(cfg.DBMaxOpenConns, 1, 200)},
		{"DB_MAX_IDLE_CONNS", inRange(cfg.DBMaxIdleConns, 0, cfg.DBMaxOpenConns)},
		{"DB_CONN_MAX_LIFETIME", positive(cfg.DBConnMaxLifetime)},
		{"DB_CONN_TIMEOUT", positive(cfg.DBConnTimeout)},
		{"MAX_NAME_LENGTH", inRange(cfg.MaxNameLength, 10, 1000)},
		{"AGGREGATE_MAX_NAMES", inRange(cfg.AggregateMaxNames, 1, 500000)},
		{"AGGREGATE_WORKERS", inRange(cfg.AggregateWorkers, 1, 256)},
		{"SPLIT_MAX_DEPTH", inRange(cfg.SplitMaxDepth, 0, 3)},
		{"USAGE_RECORD_TIMEOUT", positive(cfg.UsageRecordTimeout)},
		{"UNIDENTIFIED_LABEL", notBlank(cfg.UnidentifiedLabel)},
		{"UNCLASSIFIED_LABEL", notBlank(cfg.UnclassifiedLabel)},
		{"STATS_INTERVAL_MINUTES", inRange(cfg.StatsIntervalMinutes, 1, 1440)},
		{"STALE_MAPPING_DAYS", inRange(cfg.StaleMappingDays, 1, 3650)},
	}

	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("invalid %s: %w", c.name, c.err)
		}
	}
	return nil
}

// validatePort accepts unprivileged TCP ports only
func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got: %d", n)
	}
	if n < 1024 {
		return fmt.Errorf("PORT %d is privileged, use ports 1024-65535", n)
	}
	return nil
}

// validateAddress keeps the listener on loopback, private or unspecified addresses.
// Public exposure goes through the reverse proxy.
func validateAddress(address string) error {
	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, bind to a private or loopback address", address)
	}
	return nil
}

func validateLogLevel(level string) error {
	if !slices.Contains(logLevels, strings.ToLower(level)) {
		return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", logLevels, level)
	}
	return nil
}

// validateStore checks the backend name and that postgres has a DSN
func validateStore(backend, dsn string) error {
	switch backend {
	case StoreMemory:
		return nil
	case StorePostgres:
		if strings.TrimSpace(dsn) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is %s", StorePostgres)
		}
		return nil
	}
	return fmt.Errorf("STORE_BACKEND must be one of: [%s %s], got: %s", StoreMemory, StorePostgres, backend)
}

func inRange[T int | int64](value, minValue, maxValue T) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("must be between %d and %d, got: %d", minValue, maxValue, value)
	}
	return nil
}

func positive(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got: %s", d)
	}
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

func envString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envValue parses key with parse. Unset or unparsable values fall back to defaultValue.
func envValue[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := parse(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
