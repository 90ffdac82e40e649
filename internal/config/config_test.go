package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRY", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MAX_FILE_SIZE", "1024")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "tomorrow")
	t.Setenv("MAX_FILE_SIZE", "lots")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
}
