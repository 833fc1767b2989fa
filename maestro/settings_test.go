package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromBaseYAML(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "maestro", cfg.App.Name)
	assert.Equal(t, 10, cfg.Maestro.OrderBatchSize)
	assert.Equal(t, "0.0.0.0:50051", cfg.GRPCServer.Address())
}

func TestLoadConfigRejectsBadProbability(t *testing.T) {
	t.Setenv("MAESTRO_MAESTRO_PROBABILITYOFOVERBAKING", "1.5")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestBakingDuration(t *testing.T) {
	m := MaestroSettings{BakingBaseInMilliseconds: 1000, BakingPerToppingInMilliseconds: 200}

	assert.Equal(t, time.Second, m.BakingDuration(0))
	assert.Equal(t, 1600*time.Millisecond, m.BakingDuration(3))
}
