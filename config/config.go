package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the auction engine.
type Config struct {
	Port            string
	LogLevel        string
	RedisAddr       string // empty disables event publishing
	AntiSnipeWindow time.Duration
	AntiSnipeExtend time.Duration
	SweepInterval   time.Duration
	MaxBidRetries   int
}

// Load reads configuration from the environment, after loading an optional
// .env file. Missing values fall back to production-ready defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            envString("PORT", "8080"),
		LogLevel:        envString("LOG_LEVEL", "info"),
		RedisAddr:       envString("REDIS_ADDR", ""),
		AntiSnipeWindow: envDuration("ANTI_SNIPE_WINDOW", 5*time.Minute),
		AntiSnipeExtend: envDuration("ANTI_SNIPE_EXTENSION", 5*time.Minute),
		SweepInterval:   envDuration("SWEEP_INTERVAL", 5*time.Second),
		MaxBidRetries:   envInt("MAX_BID_RETRIES", 3),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
