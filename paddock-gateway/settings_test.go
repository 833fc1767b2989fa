package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromBaseYAML(t *testing.T) {
	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "paddock-gateway", cfg.App.Name)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "orders", cfg.Nats.Subject)
	assert.Equal(t, "ORDERS", cfg.Nats.Stream)
	assert.True(t, cfg.UseNats)
	assert.Contains(t, cfg.HTTP.CORS.Headers, "Content-Type")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("PADDOCKGATEWAY_HTTP_PORT", "9090")
	t.Setenv("PADDOCKGATEWAY_USENATS", "false")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.False(t, cfg.UseNats)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("PADDOCKGATEWAY_HTTP_PORT", "eighty")

	_, err := LoadConfig()

	assert.Error(t, err)
}
