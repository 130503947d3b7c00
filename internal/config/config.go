// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	HTTPPort             string
	AdminAPIKey          string
	ChainGatewayURL      string
	ChainRetryMax        int
	ChainRetryBaseDelay  time.Duration
	GoldFeedURL          string
	GoldFeedRetryMax     int
	FeedWorkerInterval   time.Duration
	ReportWorkerInterval time.Duration
	PriceCacheTTL        time.Duration
	SheetsSpreadsheetID  string
	GoogleCredentials    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:          envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:          envOrDefaultWarn("ADMIN_API_KEY", ""),
		ChainGatewayURL:      envOrDefaultWarn("CHAIN_GATEWAY_URL", ""),
		ChainRetryMax:        envOrDefaultInt("CHAIN_RETRY_MAX", 5),
		ChainRetryBaseDelay:  envOrDefaultDuration("CHAIN_RETRY_BASE_DELAY", 2*time.Second),
		GoldFeedURL:          envOrDefault("GOLD_FEED_URL", "https://api.coingecko.com/api/v3"),
		GoldFeedRetryMax:     envOrDefaultInt("GOLD_FEED_RETRY_MAX", 5),
		FeedWorkerInterval:   envOrDefaultDuration("FEED_WORKER_INTERVAL", 1*time.Hour),
		ReportWorkerInterval: envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		PriceCacheTTL:        envOrDefaultDuration("PRICE_CACHE_TTL", 30*time.Second),
		SheetsSpreadsheetID:  envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentials:    envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
