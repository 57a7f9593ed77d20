package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	UploadDir     string // Base path for uploaded blobs
	MaxUploadSize int64  // Maximum accepted upload size in bytes
	CacheCapacity int    // Maximum number of user keys resident in the post cache
	CacheTTL      time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "1048576"), 10, 64)
	if err != nil {
		return nil, err
	}

	capacity, err := strconv.Atoi(getEnv("CACHE_CAPACITY", "100"))
	if err != nil {
		return nil, err
	}

	ttlSeconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "300"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./postdrop.db"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: maxUpload,
		CacheCapacity: capacity,
		CacheTTL:      time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
