// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	RiskFreeRate       float64
	DefaultPeriod      string
	SimulationSeed     uint64
	MarketDataMode     marketdata.Mode
	YahooBaseURL       string
	PriceCacheTTL      time.Duration
	RetentionDays      int
	Watchlist          []string
	CompareConcurrency int

	Schedules Schedules
	Backup    BackupConfig
}

// Schedules holds cron expressions (with seconds) for background jobs. Empty disables a job.
type Schedules struct {
	WatchlistRefresh string
	CacheCleanup     string
	Retention        string
	Maintenance      string
	Backup           string
}

// BackupConfig holds S3-compatible backup settings
type BackupConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("RISK_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Port:               getEnvAsInt("GO_PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RiskFreeRate:       getEnvAsFloat("RISK_FREE_RATE", 0.02),
		DefaultPeriod:      getEnv("DEFAULT_PERIOD", string(marketdata.DefaultPeriod)),
		SimulationSeed:     uint64(getEnvAsInt("SIMULATION_SEED", 42)),
		MarketDataMode:     marketdata.Mode(getEnv("MARKET_DATA_MODE", string(marketdata.ModeAuto))),
		YahooBaseURL:       getEnv("YAHOO_BASE_URL", ""),
		PriceCacheTTL:      getEnvAsDuration("PRICE_CACHE_TTL", 6*time.Hour),
		RetentionDays:      getEnvAsInt("ANALYSIS_RETENTION_DAYS", 90),
		Watchlist:          getEnvAsList("WATCHLIST", []string{"SPY", "QQQ", "AAPL", "MSFT"}),
		CompareConcurrency: getEnvAsInt("COMPARE_CONCURRENCY", 4),
		Schedules: Schedules{
			WatchlistRefresh: getEnv("WATCHLIST_SCHEDULE", "0 30 22 * * MON-FRI"),
			CacheCleanup:     getEnv("CACHE_CLEANUP_SCHEDULE", "0 0 * * * *"),
			Retention:        getEnv("RETENTION_SCHEDULE", "0 15 3 * * *"),
			Maintenance:      getEnv("MAINTENANCE_SCHEDULE", "0 0 4 * * SUN"),
			Backup:           getEnv("BACKUP_SCHEDULE", "0 0 2 * * *"),
		},
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the configuration for out-of-range or malformed values
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("GO_PORT %d out of range", c.Port))
	}
	if c.RiskFreeRate < -0.05 || c.RiskFreeRate > 0.25 {
		errs = append(errs, fmt.Errorf("RISK_FREE_RATE %v out of range [-0.05, 0.25]", c.RiskFreeRate))
	}
	if _, err := marketdata.ParsePeriod(c.DefaultPeriod); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_PERIOD: %w", err))
	}
	if !c.MarketDataMode.Valid() {
		errs = append(errs, fmt.Errorf("MARKET_DATA_MODE %q must be auto, live or simulated", c.MarketDataMode))
	}
	if c.PriceCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("PRICE_CACHE_TTL must not be negative"))
	}
	if c.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("ANALYSIS_RETENTION_DAYS must not be negative"))
	}
	if c.CompareConcurrency < 1 || c.CompareConcurrency > 32 {
		errs = append(errs, fmt.Errorf("COMPARE_CONCURRENCY %d out of range [1, 32]", c.CompareConcurrency))
	}
	for _, symbol := range c.Watchlist {
		if _, err := marketdata.SanitizeTicker(symbol); err != nil {
			errs = append(errs, fmt.Errorf("WATCHLIST: %w", err))
		}
	}

	schedules := map[string]string{
		"WATCHLIST_SCHEDULE":     c.Schedules.WatchlistRefresh,
		"CACHE_CLEANUP_SCHEDULE": c.Schedules.CacheCleanup,
		"RETENTION_SCHEDULE":     c.Schedules.Retention,
		"MAINTENANCE_SCHEDULE":   c.Schedules.Maintenance,
		"BACKUP_SCHEDULE":        c.Schedules.Backup,
	}
	for name, expr := range schedules {
		if expr == "" {
			continue
		}
		if _, err := scheduleParser.Parse(expr); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, expr, err))
		}
	}

	if c.Backup.Enabled && c.Backup.Bucket == "" {
		errs = append(errs, fmt.Errorf("BACKUP_S3_BUCKET is required when BACKUP_ENABLED is set"))
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks and upper-casing entries
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
