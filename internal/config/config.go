package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppEnv string

	// Remote authority.
	APIBaseURL     string
	RequestTimeout time.Duration

	// Durable tier.
	StatePath     string        // file tier location
	RedisAddr     string        // when set, the durable tier is redis instead of the file
	RedisPassword string
	RetentionDays int           // durable-tier entry horizon

	// Session authority.
	RefreshWindow time.Duration // "expiring soon" horizon

	// Reference backend (cmd/stubapi).
	AppPort        string
	TokenSecret    string
	TokenExpiry    time.Duration
	AllowedOrigins []string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:3000/v1"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		StatePath:      getEnv("STATE_PATH", defaultStatePath()),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RetentionDays:  getEnvInt("RETENTION_DAYS", 30),
		RefreshWindow:  time.Duration(getEnvInt("REFRESH_WINDOW_HOURS", 24)) * time.Hour,
		AppPort:        getEnv("APP_PORT", "3000"),
		TokenSecret:    getEnv("TOKEN_SECRET", ""),
		TokenExpiry:    time.Duration(getEnvInt("TOKEN_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func defaultStatePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/cinema-client/state.json"
	}
	return "./state.json"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
