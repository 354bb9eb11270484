package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "/admin", cfg.AdminPathPrefix)
	assert.Equal(t, 100.0, cfg.MinFundingAmount)
	assert.Equal(t, 100000.0, cfg.MaxFundingAmount)
	assert.Equal(t, 100.0, cfg.MinWithdrawalAmount)
	assert.Equal(t, 3*time.Second, cfg.GatewayDelay)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SUNYIELD_API_URL", "https://api.sunyield.example")
	t.Setenv("SUNYIELD_MIN_FUNDING", "250")
	t.Setenv("SUNYIELD_GATEWAY_DELAY", "50ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.sunyield.example", cfg.APIBaseURL)
	assert.Equal(t, 250.0, cfg.MinFundingAmount)
	assert.Equal(t, 50*time.Millisecond, cfg.GatewayDelay)
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("SUNYIELD_MIN_FUNDING", "not-a-number")
	t.Setenv("SUNYIELD_GATEWAY_DELAY", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.MinFundingAmount)
	assert.Equal(t, 3*time.Second, cfg.GatewayDelay)
}
