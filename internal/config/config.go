package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// AIConfig configures the completion provider. An empty APIKey and Audience means degraded mode.
type AIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Audience string
	Timeout  time.Duration
}

// NotifyConfig selects SES delivery when both values are set.
type NotifyConfig struct {
	SESRegion string
	SESSender string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port                 string
	DatabaseURL          string
	StorageDriver        string
	JWTSecret            string
	TokenTTL             time.Duration
	RateLimitAI          RateLimitConfig
	AI                   AIConfig
	UploadDir            string
	MaxUploadBytes       int64
	RedisURL             string
	Notify               NotifyConfig
	DefaultPhoneRegion   string
	LogLevel             string
	LogFormat            string
	WSInsecureSkipVerify bool
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:           parseDuration(getEnv("JWT_TTL", "24h")),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		AI: AIConfig{
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
			Model:    getEnv("OPENAI_MODEL", "gpt-4o"),
			Audience: os.Getenv("AI_GATEWAY_AUDIENCE"),
		},
		Notify: NotifyConfig{
			SESRegion: os.Getenv("SES_REGION"),
			SESSender: os.Getenv("SES_SENDER"),
		},
	}

	var errs []error

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_AI", "10/min"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_AI value: %w", err))
	}
	cfg.RateLimitAI = rl

	defaultDriver := StorageMemory
	if cfg.DatabaseURL != "" {
		defaultDriver = StoragePostgres
	}
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", defaultDriver))
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver))
	}

	cfg.AI.Timeout, err = parsePositiveDuration(getEnv("AI_TIMEOUT", "60s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid AI_TIMEOUT value: %w", err))
	}

	cfg.MaxUploadBytes, err = parsePositiveInt(getEnv("MAX_UPLOAD_BYTES", strconv.Itoa(10<<20)))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid MAX_UPLOAD_BYTES value: %w", err))
	}

	cfg.WSInsecureSkipVerify, err = strconv.ParseBool(getEnv("WS_INSECURE_SKIP_VERIFY", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid WS_INSECURE_SKIP_VERIFY value: %w", err))
	}

	if (cfg.Notify.SESRegion == "") != (cfg.Notify.SESSender == "") {
		errs = append(errs, errors.New("SES_REGION and SES_SENDER must be set together"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// AIEnabled reports whether a completion provider is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != "" || c.AI.Audience != ""
}

// SESEnabled reports whether email notifications go through SES.
func (c *Config) SESEnabled() bool {
	return c.Notify.SESRegion != "" && c.Notify.SESSender != ""
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func parsePositiveDuration(input string) (time.Duration, error) {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func parsePositiveInt(input string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
