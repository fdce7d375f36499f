// Package config loads terminal settings from the environment, with an
// optional .env file for development setups.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	BackendBaseURL string
	RedisAddr      string
	DataDir        string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Mobile-money confirmation polling.
	PollInterval time.Duration
	PollTimeout  time.Duration

	// Parked-sale resubmission cadence.
	OutboxTick time.Duration

	MaxRequestBodySize int64
}

// Load reads configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:     getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		PollInterval:       getDuration("PAYMENT_POLL_INTERVAL", 3*time.Second),
		PollTimeout:        getDuration("PAYMENT_POLL_TIMEOUT", 2*time.Minute),
		OutboxTick:         getDuration("OUTBOX_TICK", 30*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
