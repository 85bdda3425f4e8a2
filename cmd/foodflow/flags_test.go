package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_RADIUS_KM", "12.5")

	cfg, err := NewConfig([]string{"-a", ":9090", "-s", "30s"})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, 30*time.Second, cfg.ExpirySweepInterval)
	assert.Equal(t, 12.5, cfg.NotifyRadiusKm)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "Asia/Colombo", cfg.Timezone)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestNewConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewConfig(nil)
	assert.Error(t, err)
}

func TestNewConfigRejectsZeroSweep(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := NewConfig([]string{"-s", "0s"})
	assert.Error(t, err)
}
