package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Collection store
	CollectionTTL  time.Duration
	MaxCollections int

	// Link index; empty keeps it in memory.
	IndexPath string

	// Import defaults
	DefaultRootPath string
	CheckCycles     bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("BOOKMARKD_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		CollectionTTL:  envDuration("COLLECTION_TTL", 24*time.Hour),
		MaxCollections: envInt("MAX_COLLECTIONS", 1000),

		IndexPath: os.Getenv("INDEX_PATH"),

		DefaultRootPath: os.Getenv("DEFAULT_ROOT_PATH"),
		CheckCycles:     envBool("CHECK_CYCLES", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.CollectionTTL <= 0 {
		cfg.CollectionTTL = 24 * time.Hour
	}
	if cfg.MaxCollections <= 0 {
		cfg.MaxCollections = 1000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BOOKMARKD_API_KEY is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
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
