package config_test

import (
	"testing"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "auction", cfg.MongoDB.Database)
	assert.Equal(t, 86400, cfg.JWT.ExpiresIn)
	assert.Equal(t, 48*3600, cfg.Auction.DefaultRoundSeconds)
	assert.Equal(t, 300, cfg.Auction.MinExtensionSeconds)
	assert.Equal(t, int64(100000), cfg.Auction.InitialBudget)
	assert.True(t, cfg.Auction.ShortfallAllocation)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONGODB_DATABASE", "auction_test")
	t.Setenv("AUCTION_INITIALBUDGET", "500")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "auction_test", cfg.MongoDB.Database)
	assert.Equal(t, int64(500), cfg.Auction.InitialBudget)
}
