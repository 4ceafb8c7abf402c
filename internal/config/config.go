package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/levindixon/WebMD/internal/markdown"
)

type Config struct {
	Port string

	// Auth. Empty disables authentication (local use).
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Conversion defaults
	DefaultChunkSize     int
	DefaultGroupBudget   int
	DefaultCacheCapacity int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("WEBMD_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:     envInt("DEFAULT_CHUNK_SIZE", 2048),
		DefaultGroupBudget:   envInt("DEFAULT_GROUP_BUDGET", 32768),
		DefaultCacheCapacity: envInt("DEFAULT_CACHE_CAPACITY", 128),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	// Bad budget env values should fail at startup, not per request.
	if err := c.ConvertOptions().Validate(); err != nil {
		return fmt.Errorf("conversion defaults: %w", err)
	}
	return nil
}

// ConvertOptions builds the default conversion options for this server.
func (c Config) ConvertOptions() markdown.Options {
	return markdown.Options{
		ChunkSize:     c.DefaultChunkSize,
		GroupBudget:   c.DefaultGroupBudget,
		CacheCapacity: c.DefaultCacheCapacity,
	}.WithDefaults()
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
