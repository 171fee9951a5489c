package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/trial/config"
)

func Test_Load_AppliesDefaultsWhenTheEnvironmentIsEmpty(t *testing.T) {
	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, config.EngineMemory, cfg.Engine)
	assert.Equal(t, 50, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, uint(100), cfg.Projection.BatchSize)
	assert.Equal(t, 200*time.Millisecond, cfg.Projection.PollInterval)
}

func Test_Load_ReadsOverridesFromTheEnvironment(t *testing.T) {
	t.Setenv("TRIALCORE_ENGINE", config.EnginePostgresPGX)
	t.Setenv("TRIALCORE_POSTGRES_DSN", "postgres://app:secret@db:5432/trials?sslmode=require")
	t.Setenv("TRIALCORE_POSTGRES_MAX_OPEN_CONNS", "8")
	t.Setenv("TRIALCORE_PROJECTION_POLL_INTERVAL", "1s")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, config.EnginePostgresPGX, cfg.Engine)
	assert.Equal(t, "postgres://app:secret@db:5432/trials?sslmode=require", cfg.Postgres.DSN)
	assert.Equal(t, 8, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, time.Second, cfg.Projection.PollInterval)
}

func Test_PGXPoolConfig_CarriesThePoolSettings(t *testing.T) {
	cfg := config.PostgresConfig{
		DSN:             "postgres://app:secret@db:5432/trials?sslmode=disable",
		MaxOpenConns:    12,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: time.Minute,
		ConnectTimeout:  2 * time.Second,
	}

	poolConfig, err := cfg.PGXPoolConfig()

	require.NoError(t, err)
	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, 30*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, 2*time.Second, poolConfig.ConnConfig.ConnectTimeout)
}

func Test_PGXPoolConfig_RejectsAMalformedDSN(t *testing.T) {
	cfg := config.PostgresConfig{DSN: "not a dsn at all ://"}

	_, err := cfg.PGXPoolConfig()

	require.Error(t, err)
}
