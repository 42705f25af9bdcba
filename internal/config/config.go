package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv    string
	AppURL    string
	HTTPPort  int
	DBPath    string
	DBDriver  string
	RedisAddr string
	JWTSecret string

	// Conversation platform. ConvaiKeyURL points at a secret-retrieval
	// endpoint; when empty, ConvaiAPIKey is used directly.
	ConvaiBaseURL   string
	ConvaiAPIKey    string
	ConvaiKeyURL    string
	ConvaiKeyToken  string
	ConvaiPollEvery time.Duration
	ReportCacheTTL  time.Duration
	CacheEnabled    bool

	// Transactional email.
	ResendBaseURL string
	ResendAPIKey  string
	ResendFrom    string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	port, err := strconv.Atoi(getEnv("HTTP_PORT", "8080"))
	if err != nil {
		port = 8080
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		cacheEnabled = true
	}

	return &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		AppURL:    getEnv("APP_URL", "http://localhost:3000"),
		HTTPPort:  port,
		DBPath:    getEnv("DB_PATH", "./data/pulsato.db"),
		DBDriver:  getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		ConvaiBaseURL:   getEnv("CONVAI_BASE_URL", ""),
		ConvaiAPIKey:    getEnv("CONVAI_API_KEY", ""),
		ConvaiKeyURL:    getEnv("CONVAI_KEY_URL", ""),
		ConvaiKeyToken:  getEnv("CONVAI_KEY_TOKEN", ""),
		ConvaiPollEvery: getDuration("CONVAI_POLL_INTERVAL", 0),
		ReportCacheTTL:  getDuration("REPORT_CACHE_TTL", 5*time.Minute),
		CacheEnabled:    cacheEnabled,

		ResendBaseURL: getEnv("RESEND_BASE_URL", ""),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		ResendFrom:    getEnv("RESEND_FROM", "Pulsato <onboarding@resend.dev>"),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
