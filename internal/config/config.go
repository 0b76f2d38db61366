package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr          string
	DataDir             string
	BaseURL             string
	SessionSecret       string
	MaxUploadBytes      int64
	WorkerCount         int
	LogLevel            string
	LogFormat           string
	DefaultOrder        int
	DefaultLevels       int
	MaxLevels           int
	MaxImageSide        int
	SessionTTLMins      int
	CleanupIntervalMins int
}

func Load() *Config {
	return &Config{
		ListenAddr:          envOr("LISTEN_ADDR", ":8080"),
		DataDir:             envOr("DATA_DIR", "./data"),
		BaseURL:             envOr("BASE_URL", "http://localhost:8080"),
		SessionSecret:       envOr("SESSION_SECRET", "change-me-in-production-32-bytes!"),
		MaxUploadBytes:      envInt64Or("MAX_UPLOAD_BYTES", 32*1024*1024),
		WorkerCount:         envIntOr("WORKER_COUNT", 2),
		LogLevel:            envOr("LOG_LEVEL", "info"),
		LogFormat:           envOr("LOG_FORMAT", "text"),
		DefaultOrder:        envIntOr("DEFAULT_ORDER", 2),
		DefaultLevels:       envIntOr("DEFAULT_LEVELS", 1),
		MaxLevels:           envIntOr("MAX_LEVELS", 6),
		MaxImageSide:        envIntOr("MAX_IMAGE_SIDE", 1024),
		SessionTTLMins:      envIntOr("SESSION_TTL_MINS", 24*60),
		CleanupIntervalMins: envIntOr("CLEANUP_INTERVAL_MINS", 10),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
