package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName          = "CardSavvy"
	defaultEnv              = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultRewardUnit       = "INR"
	defaultGeminiModel      = "gemini-2.5-flash"
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultClassifyTimeout  = 8 * time.Second
	defaultClassifyCacheTTL = 12 * time.Hour
	defaultLookupRatePerMin = 5
	devAuthSecret           = "dev-secret"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	Env              string
	Port             string
	LogLevel         string
	DatabaseURL      string
	RedisURL         string
	AuthSecret       string
	AdminToken       string
	GeminiAPIKey     string
	GeminiModel      string
	RewardUnit       string
	ClassifyTimeout  time.Duration
	ClassifyCacheTTL time.Duration
	IdempotencyTTL   time.Duration
	LookupRatePerMin int
	ShutdownPeriod   time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. Outside development mode, Postgres, Redis and an auth secret are
// mandatory.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		Env:              getEnv("APP_ENV", defaultEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AuthSecret:       os.Getenv("AUTH_SECRET"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", defaultGeminiModel),
		RewardUnit:       getEnv("REWARD_UNIT", defaultRewardUnit),
		ClassifyTimeout:  defaultClassifyTimeout,
		ClassifyCacheTTL: defaultClassifyCacheTTL,
		IdempotencyTTL:   defaultIdempotencyTTL,
		LookupRatePerMin: defaultLookupRatePerMin,
		ShutdownPeriod:   defaultShutdownDelay,
	}

	var err error
	if cfg.ClassifyTimeout, err = durationEnv("CLASSIFY_TIMEOUT", cfg.ClassifyTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ClassifyCacheTTL, err = durationEnv("CLASSIFY_CACHE_TTL", cfg.ClassifyCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOOKUP_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOOKUP_RATE_PER_MIN: %w", err)
		}
		cfg.LookupRatePerMin = n
	}

	if cfg.IsDev() {
		if cfg.AuthSecret == "" {
			cfg.AuthSecret = devAuthSecret
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET must be set")
	}

	return cfg, nil
}

// IsDev reports whether the service runs in development mode, which allows
// starting without Postgres and Redis.
func (c Config) IsDev() bool {
	return c.Env == "development"
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
