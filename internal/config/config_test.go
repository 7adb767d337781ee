package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("JOBS_REQUIRE_ADDRESS", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "")
	t.Setenv("NOTIFY_SMTP_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.Jobs.RequireAddress)
	assert.False(t, cfg.Storage.Enabled())
	assert.Equal(t, "@hourly", cfg.Maintenance.ResetPurgeCron)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 11*1024*1024, cfg.Storage.BodyLimit())
	assert.False(t, cfg.Notification.MailEnabled())
}

func TestStorageBodyLimit_UncappedUploads(t *testing.T) {
	cfg := StorageConfig{MaxUploadBytes: 0}
	assert.Equal(t, uncappedBodyLimit, cfg.BodyLimit())
	assert.Greater(t, cfg.BodyLimit(), 4*1024*1024)

	cfg.MaxUploadBytes = 2 * 1024 * 1024
	assert.Equal(t, 3*1024*1024, cfg.BodyLimit())
}

func TestNotificationConfig_Mail(t *testing.T) {
	t.Setenv("NOTIFY_SMTP_HOST", "smtp.lcsstaffing.test")
	t.Setenv("NOTIFY_SMTP_PORT", "2525")
	t.Setenv("NOTIFY_SMTP_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Notification.MailEnabled())
	assert.Equal(t, "smtp.lcsstaffing.test:2525", cfg.Notification.SMTPAddr())
	assert.Equal(t, 10*time.Second, cfg.Notification.SMTPTimeout())
	assert.Equal(t, 5*time.Second, cfg.Notification.WebhookTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JOBS_REQUIRE_ADDRESS", "true")
	t.Setenv("STORAGE_BUCKET", "jobs")
	t.Setenv("STORAGE_ACCESS_KEY_ID", "key")
	t.Setenv("STORAGE_SECRET_ACCESS_KEY", "secret")
	t.Setenv("GEOCODING_API_KEY", "maps-key")
	t.Setenv("AUTH_SIGNIN_PER_MINUTE", "not-a-number")
	t.Setenv("AUTH_SUPER_ADMIN_PASSWORD", "bootstrap")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.True(t, cfg.Jobs.RequireAddress)
	assert.True(t, cfg.Storage.Enabled())
	assert.True(t, cfg.Geocoding.Enabled())
	assert.Equal(t, 5, cfg.Auth.SignInPerMinute)
	assert.Equal(t, "bootstrap", cfg.Auth.SuperAdminPassword)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}
