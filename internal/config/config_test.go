package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"REDIS_HOST", "RABBITMQ_URL", "GOOGLE_CLIENT_ID", "APPROVED_EMAILS"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "info")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Empty(t, cfg.Redis.Host)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Empty(t, cfg.Auth.GoogleClientID)
	assert.Empty(t, cfg.Auth.ApprovedEmails)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("APPROVED_EMAILS", " a@example.com, ,B@example.com ")
	t.Setenv("REPORT_CACHE_TTL", "2m")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"a@example.com", "B@example.com"}, cfg.Auth.ApprovedEmails)
	assert.Equal(t, 2*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, int64(5), cfg.MaxUploadMB)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "http")
	t.Setenv("REPORT_CACHE_TTL", "soon")
	t.Setenv("MAX_UPLOAD_MB", "-1")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, int64(20), cfg.MaxUploadMB)
}
