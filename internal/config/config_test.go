package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "uniadmin", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 720*time.Hour, cfg.NotificationTTL)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "@daily", cfg.CleanupSchedule)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "medical_officer", cfg.BootstrapAdmin.AdminType)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_EXPIRY", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.uni.test, https://b.uni.test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SMTP_HOST", "smtp.uni.test")
	t.Setenv("SMTP_SENDER", "noreply@uni.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"https://a.uni.test", "https://b.uni.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
