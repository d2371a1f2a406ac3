package lazycache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	require.Equal(float32(0.8), cfg.MaxOccupancy)
	require.True(cfg.ForceReclaimOnEviction)
	require.Equal(64, cfg.Shards)
}

func TestLoadConfigDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := LoadConfig("LAZYCACHE_TEST_DEFAULTS_")
	require.NoError(err)
	require.Equal(DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv(t *testing.T) {
	require := require.New(t)

	t.Setenv("LAZYCACHE_MAX_OCCUPANCY", "0.5")
	t.Setenv("LAZYCACHE_FORCE_RECLAIM_ON_EVICTION", "false")
	t.Setenv("LAZYCACHE_SHARDS", "8")

	cfg, err := LoadConfig("LAZYCACHE_")
	require.NoError(err)
	require.Equal(float32(0.5), cfg.MaxOccupancy)
	require.False(cfg.ForceReclaimOnEviction)
	require.Equal(8, cfg.Shards)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("LAZYCACHE_BAD_MAX_OCCUPANCY", "lots")

	_, err := LoadConfig("LAZYCACHE_BAD_")
	require.ErrorIs(t, err, ErrParsingConfig)
}

func TestClampFraction(t *testing.T) {
	require := require.New(t)

	require.Equal(float32(0), clampFraction(-1))
	require.Equal(float32(1), clampFraction(2))
	require.Equal(float32(0.3), clampFraction(0.3))
}
