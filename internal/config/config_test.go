package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "STORAGE_DRIVER", "STORAGE_ENDPOINT",
	"STORAGE_REGION", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY", "STORAGE_BUCKET",
	"STORAGE_USE_SSL", "STORAGE_ROOT", "S3_ENDPOINT", "S3_USE_PATH_STYLE", "S3_PART_SIZE_MB", "S3_CONCURRENCY", "MAX_UPLOAD_BYTES",
	"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT", "DATABASE_URL",
}

// clearEnv blanks every variable fromEnv reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_ACCESS_KEY", "minioadmin")
	t.Setenv("STORAGE_SECRET_KEY", "minioadmin")
	t.Setenv("STORAGE_BUCKET", "files")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "minio", cfg.StorageDriver)
	assert.Equal(t, "localhost:9000", cfg.StorageEndpoint)
	assert.Equal(t, "us-east-1", cfg.StorageRegion)
	assert.False(t, cfg.StorageUseSSL)
	assert.Equal(t, int64(16), cfg.S3PartSizeMB)
	assert.Equal(t, 4, cfg.S3Concurrency)
	assert.Zero(t, cfg.MaxUploadBytes)
	assert.Zero(t, cfg.HTTPReadTimeout)
	assert.Zero(t, cfg.HTTPWriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.JournalEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("STORAGE_ACCESS_KEY", "ak")
	t.Setenv("STORAGE_SECRET_KEY", "sk")
	t.Setenv("STORAGE_BUCKET", "bucket")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("S3_ENDPOINT", "http://localhost:4566")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("HTTP_WRITE_TIMEOUT", "2m")
	t.Setenv("DATABASE_URL", "postgres://localhost/filegate")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "s3", cfg.StorageDriver)
	assert.True(t, cfg.StorageUseSSL)
	assert.Equal(t, "http://localhost:4566", cfg.S3Endpoint)
	assert.True(t, cfg.S3UsePathStyle)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 2*time.Minute, cfg.HTTPWriteTimeout)
	assert.True(t, cfg.JournalEnabled())
}

func TestFromEnv_ExplicitLogFormatWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnv_FailsFastWithoutCredentials(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing credential",
			env:     map[string]string{"STORAGE_BUCKET": "files"},
			wantErr: "STORAGE_ACCESS_KEY",
		},
		{
			name:    "missing bucket",
			env:     map[string]string{"STORAGE_ACCESS_KEY": "a", "STORAGE_SECRET_KEY": "b"},
			wantErr: "STORAGE_BUCKET",
		},
		{
			name:    "local without root",
			env:     map[string]string{"STORAGE_DRIVER": "local", "STORAGE_BUCKET": "files"},
			wantErr: "STORAGE_ROOT",
		},
		{
			name:    "part size below minimum",
			env:     map[string]string{"STORAGE_ACCESS_KEY": "a", "STORAGE_SECRET_KEY": "b", "STORAGE_BUCKET": "files", "S3_PART_SIZE_MB": "1"},
			wantErr: "S3_PART_SIZE_MB",
		},
		{
			name:    "negative part size",
			env:     map[string]string{"STORAGE_DRIVER": "s3", "STORAGE_ACCESS_KEY": "a", "STORAGE_SECRET_KEY": "b", "STORAGE_BUCKET": "files", "S3_PART_SIZE_MB": "-1"},
			wantErr: "S3_PART_SIZE_MB",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"STORAGE_DRIVER": "azure"},
			wantErr: "unknown STORAGE_DRIVER",
		},
		{
			name:    "bad number",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "MAX_UPLOAD_BYTES": "lots"},
			wantErr: "MAX_UPLOAD_BYTES",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "SHUTDOWN_TIMEOUT": "soon"},
			wantErr: "SHUTDOWN_TIMEOUT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := fromEnv()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_MemoryNeedsNothing(t *testing.T) {
	c := &Config{StorageDriver: "memory"}
	assert.NoError(t, c.Validate())
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := &Config{StorageDriver: "minio", MaxUploadBytes: -1, S3PartSizeMB: 5121, S3Concurrency: 0}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_PART_SIZE_MB")
	assert.Contains(t, err.Error(), "S3_CONCURRENCY")
	assert.Contains(t, err.Error(), "STORAGE_ACCESS_KEY")
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
}
