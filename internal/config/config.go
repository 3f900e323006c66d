package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/covid-charts/internal/covid/sources"
	"github.com/i474232898/covid-charts/internal/logger"
	"github.com/i474232898/covid-charts/internal/view"
)

type AppConfig struct {
	Port string

	// Upstream endpoints.
	GlobalURL string
	CanadaURL string

	// HTTPTimeout bounds each upstream request.
	HTTPTimeout time.Duration

	// RenderWait is how long a page request waits for in-flight fetches
	// before rendering a loading state.
	RenderWait time.Duration

	DefaultCountry  string
	DefaultProvince string

	// Session retention.
	SessionMaxAge   time.Duration // idle time before a session expires (0 = never)
	SessionMaxCount int           // max number of live sessions (0 = unlimited)

	// Shared upstream response cache; disabled when CacheTTL is 0.
	CacheTTL        time.Duration
	RedisAddr       string // empty = in-process cache
	RefreshInterval time.Duration

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.WithError(err).Info("no .env file found or error loading it")
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.GlobalURL = getenvDefault("GLOBAL_URL", sources.DefaultGlobalURL)
	cfg.CanadaURL = getenvDefault("CANADA_URL", sources.DefaultCanadaURL)
	cfg.DefaultCountry = getenvDefault("DEFAULT_COUNTRY", view.DefaultCountry)
	cfg.DefaultProvince = getenvDefault("DEFAULT_PROVINCE", view.DefaultProvince)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RenderWait, err = getenvDuration("RENDER_WAIT", "3s"); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "2h"); err != nil {
		return nil, err
	}
	cfg.SessionMaxCount = getenvInt("SESSION_MAX_COUNT", 1000)

	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "0s"); err != nil {
		return nil, err
	}
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFile = os.Getenv("LOG_FILE")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
