package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires a discord token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")

		_, err := Load(zerolog.Nop())
		require.Error(t, err)
		require.Contains(t, err.Error(), "DISCORD_TOKEN")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")

		cfg, err := Load(zerolog.Nop())
		require.NoError(t, err)

		require.Equal(t, "!", cfg.CommandPrefix)
		require.Equal(t, "aoe2_balancer.db", cfg.DBPath)
		require.Equal(t, "8080", cfg.ServerPort)
		require.Equal(t, time.Hour, cfg.APICacheTTL)
		require.InDelta(t, 0.4, cfg.Balance.Elo1v1Weight, 1e-9)
		require.InDelta(t, 0.6, cfg.Balance.EloTeamWeight, 1e-9)
		require.InDelta(t, 3.0, cfg.Balance.AcceptableDiffPercent, 1e-9)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("COMMAND_PREFIX", "?")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("API_CACHE_TTL", "60")
		t.Setenv("ELO_1V1_WEIGHT", "0.5")
		t.Setenv("ELO_TEAM_WEIGHT", "0.5")

		cfg, err := Load(zerolog.Nop())
		require.NoError(t, err)

		require.Equal(t, "?", cfg.CommandPrefix)
		require.Equal(t, "9090", cfg.ServerPort)
		require.Equal(t, time.Minute, cfg.APICacheTTL)
		require.InDelta(t, 0.5, cfg.Balance.Elo1v1Weight, 1e-9)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("ELO_1V1_WEIGHT", "heavy")

		_, err := Load(zerolog.Nop())
		require.Error(t, err)
		require.Contains(t, err.Error(), "ELO_1V1_WEIGHT")
	})
}

func TestValidateBalance(t *testing.T) {
	valid := BalanceConfig{
		Elo1v1Weight:          0.4,
		EloTeamWeight:         0.6,
		PositionFactorMin:     0.9,
		PositionFactorMax:     1.1,
		AcceptableDiffPercent: 3.0,
	}
	require.NoError(t, validateBalance(valid))

	t.Run("weights must sum to one", func(t *testing.T) {
		b := valid
		b.Elo1v1Weight = 0.7
		require.Error(t, validateBalance(b))
	})

	t.Run("bonus factor must exceed one", func(t *testing.T) {
		b := valid
		b.PositionFactorMax = 0.95
		require.Error(t, validateBalance(b))
	})

	t.Run("penalty factor must sit in the open unit interval", func(t *testing.T) {
		b := valid
		b.PositionFactorMin = 1.2
		require.Error(t, validateBalance(b))

		b.PositionFactorMin = 0
		require.Error(t, validateBalance(b))
	})

	t.Run("acceptable diff must not be negative", func(t *testing.T) {
		b := valid
		b.AcceptableDiffPercent = -1
		require.Error(t, validateBalance(b))
	})
}
