package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// Local quoting service
	QuoterBaseURL string
	HTTPTimeout   time.Duration

	// Solana node the quoting service reads pools from (sent as nodeUrl)
	RPCUrl string

	// Pools and tokens queried by the demo and the poller
	DynPoolAddress   string
	DLMMPoolAddress  string
	DLMMTokenAddress string
	DLMMBinLimit     int

	// Public pool API polling
	MeteoraAPIURL     string
	PollInterval      time.Duration
	PollMaxIterations int
	PollRatePerSec    float64

	// Redis settings (empty address disables caching and pub/sub)
	RedisAddr     string
	QuoteCacheTTL time.Duration

	// ClickHouse settings (empty address disables snapshot persistence)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// API proxy
	APIAddr string
	APIKey  string
	DevMode bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		// Quoter
		QuoterBaseURL: getEnv("QUOTER_BASE_URL", "http://localhost:3005"),
		HTTPTimeout:   getDurationEnv("QUOTER_HTTP_TIMEOUT", 15*time.Second),

		// RPC
		RPCUrl: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),

		// Pools
		DynPoolAddress:   getEnv("DYN_POOL_ADDRESS", ""),
		DLMMPoolAddress:  getEnv("DLMM_POOL_ADDRESS", ""),
		DLMMTokenAddress: getEnv("DLMM_TOKEN_ADDRESS", ""),
		DLMMBinLimit:     getIntEnv("DLMM_BIN_LIMIT", 10),

		// Polling
		MeteoraAPIURL:     getEnv("METEORA_API_URL", "https://amm-v2.meteora.ag"),
		PollInterval:      getDurationEnv("POLL_INTERVAL", 30*time.Second),
		PollMaxIterations: getIntEnv("POLL_MAX_ITERATIONS", 0),
		PollRatePerSec:    getFloatEnv("POLL_RATE_PER_SEC", 1),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		QuoteCacheTTL: getDurationEnv("QUOTE_CACHE_TTL", 5*time.Second),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "meteora"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings every binary depends on. Pool addresses are
// checked where they are used since not every binary needs them.
func (c *Config) Validate() error {
	if err := validateHTTPURL("QUOTER_BASE_URL", c.QuoterBaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("METEORA_API_URL", c.MeteoraAPIURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.RPCUrl) == "" {
		return fmt.Errorf("SOLANA_RPC_URL must be set")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("QUOTER_HTTP_TIMEOUT must be positive")
	}
	if c.DLMMBinLimit < 0 {
		return fmt.Errorf("DLMM_BIN_LIMIT must not be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.PollMaxIterations < 0 {
		return fmt.Errorf("POLL_MAX_ITERATIONS must not be negative")
	}
	if c.PollRatePerSec <= 0 {
		return fmt.Errorf("POLL_RATE_PER_SEC must be positive")
	}
	if c.QuoteCacheTTL < 0 {
		return fmt.Errorf("QUOTE_CACHE_TTL must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func validateHTTPURL(key, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
