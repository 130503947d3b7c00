package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"DATABASE_URL", "HTTP_PORT", "CHAIN_GATEWAY_URL", "GOLD_FEED_URL", "CHAIN_RETRY_MAX"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.GoldFeedURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("GoldFeedURL = %q, want default", cfg.GoldFeedURL)
	}
	if cfg.ChainRetryMax != 5 {
		t.Errorf("ChainRetryMax = %d, want 5", cfg.ChainRetryMax)
	}
	if cfg.ChainRetryBaseDelay != 2*time.Second {
		t.Errorf("ChainRetryBaseDelay = %v, want 2s", cfg.ChainRetryBaseDelay)
	}
	if cfg.PriceCacheTTL != 30*time.Second {
		t.Errorf("PriceCacheTTL = %v, want 30s", cfg.PriceCacheTTL)
	}
	if cfg.ReportWorkerInterval != 24*time.Hour {
		t.Errorf("ReportWorkerInterval = %v, want 24h", cfg.ReportWorkerInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CHAIN_GATEWAY_URL", "https://gateway.example.com")
	t.Setenv("CHAIN_RETRY_MAX", "10")
	t.Setenv("CHAIN_RETRY_BASE_DELAY", "5s")
	t.Setenv("PRICE_CACHE_TTL", "1m")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.ChainGatewayURL != "https://gateway.example.com" {
		t.Errorf("ChainGatewayURL = %q, want override", cfg.ChainGatewayURL)
	}
	if cfg.ChainRetryMax != 10 {
		t.Errorf("ChainRetryMax = %d, want 10", cfg.ChainRetryMax)
	}
	if cfg.ChainRetryBaseDelay != 5*time.Second {
		t.Errorf("ChainRetryBaseDelay = %v, want 5s", cfg.ChainRetryBaseDelay)
	}
	if cfg.PriceCacheTTL != time.Minute {
		t.Errorf("PriceCacheTTL = %v, want 1m", cfg.PriceCacheTTL)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CHAIN_RETRY_MAX", "not-a-number")
	t.Setenv("REPORT_WORKER_INTERVAL", "soon")

	cfg := Load()

	if cfg.ChainRetryMax != 5 {
		t.Errorf("ChainRetryMax = %d, want default 5", cfg.ChainRetryMax)
	}
	if cfg.ReportWorkerInterval != 24*time.Hour {
		t.Errorf("ReportWorkerInterval = %v, want default 24h", cfg.ReportWorkerInterval)
	}
}
