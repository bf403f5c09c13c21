// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the gateway.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	LogFormat string // "json" or "text"; defaults to json in production, text otherwise

	// Object storage. STORAGE_DRIVER selects minio (any S3-compatible endpoint),
	// s3 (AWS SDK), local (filesystem) or memory (tests and demos).
	StorageDriver    string
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StorageRoot      string // local driver only
	S3Endpoint       string // s3 driver only; full URL of an S3-compatible service
	S3UsePathStyle   bool
	S3PartSizeMB     int64
	S3Concurrency    int

	// MaxUploadBytes caps a whole POST /files body; 0 means unlimited.
	MaxUploadBytes int64

	// Zero read/write timeouts leave long transfers unbounded.
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ShutdownTimeout  time.Duration

	// DatabaseURL enables the Postgres transfer journal when set.
	DatabaseURL string
}

// Load reads configuration from a .env file (if present) and environment
// variables, then validates it. A missing credential or bucket is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:    os.Getenv("STORAGE_BUCKET"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",
		StorageRoot:      os.Getenv("STORAGE_ROOT"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3UsePathStyle:   getEnv("S3_USE_PATH_STYLE", "false") == "true",
		S3PartSizeMB:     getInt64(&errs, "S3_PART_SIZE_MB", 16),
		S3Concurrency:    int(getInt64(&errs, "S3_CONCURRENCY", 4)),

		MaxUploadBytes: getInt64(&errs, "MAX_UPLOAD_BYTES", 0),

		HTTPReadTimeout:  getDuration(&errs, "HTTP_READ_TIMEOUT", 0),
		HTTPWriteTimeout: getDuration(&errs, "HTTP_WRITE_TIMEOUT", 0),
		ShutdownTimeout:  getDuration(&errs, "SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case "minio", "s3":
		if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			errs = append(errs, errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required"))
		}
		if c.StorageBucket == "" {
			errs = append(errs, errors.New("STORAGE_BUCKET is required"))
		}
		// S3 multipart parts must be between 5 MiB and 5 GiB.
		if c.S3PartSizeMB < 5 || c.S3PartSizeMB > 5120 {
			errs = append(errs, fmt.Errorf("S3_PART_SIZE_MB must be between 5 and 5120, got %d", c.S3PartSizeMB))
		}
		if c.S3Concurrency < 1 {
			errs = append(errs, fmt.Errorf("S3_CONCURRENCY must be at least 1, got %d", c.S3Concurrency))
		}
	case "local":
		if c.StorageRoot == "" {
			errs = append(errs, errors.New("STORAGE_ROOT is required for the local driver"))
		}
		if c.StorageBucket == "" {
			errs = append(errs, errors.New("STORAGE_BUCKET is required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.MaxUploadBytes < 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must not be negative"))
	}

	return errors.Join(errs...)
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// JournalEnabled reports whether transfer events should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(errs *[]error, key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(errs *[]error, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
