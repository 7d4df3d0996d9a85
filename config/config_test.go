package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "pk_test_123")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("EXTERNAL_WEBHOOK_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 300*time.Second, cfg.MaxEventAge)
	assert.Equal(t, 5*time.Second, cfg.RelayTimeout)
	assert.Equal(t, int64(1<<20), cfg.RelayMaxBytes)
	assert.Equal(t, 1000, cfg.ReplayCapacity)
	assert.Equal(t, DefaultRelaySecret, cfg.ExternalWebhookSecret)
	assert.True(t, cfg.RelaySecretDefaulted)
	assert.Len(t, cfg.JWTSecret, 128)
	assert.Equal(t, devAdminSecretKey, cfg.AdminSecretKey)
}

func TestLoadConfig_MissingStripeKeys(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_DurationsAcceptSecondsAndGoSyntax(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_MAX_EVENT_AGE", "120")
	t.Setenv("WEBHOOK_RELAY_TIMEOUT", "1500ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.MaxEventAge)
	assert.Equal(t, 1500*time.Millisecond, cfg.RelayTimeout)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_RELAY_TIMEOUT", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ProductionRequiresRelaySecret(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("EXTERNAL_WEBHOOK_URL", "https://hooks.example.com/stripe")
	t.Setenv("EXTERNAL_WEBHOOK_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("EXTERNAL_WEBHOOK_SECRET", "s3cr3t")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.RelaySecretDefaulted)
	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.AdminSecretKey)
}

func TestLoadConfig_NodeEnvFallback(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
}
