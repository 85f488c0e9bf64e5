package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	cases := []struct {
		in   string
		want Position
	}{
		{"flank", PositionFlank},
		{"POCKET", PositionPocket},
		{"  Flank ", PositionFlank},
		{"any", PositionAny},
		{"midfield", PositionAny},
		{"", PositionAny},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ParsePosition(tc.in), "input %q", tc.in)
	}
}

func TestPositionOther(t *testing.T) {
	require.Equal(t, PositionPocket, PositionFlank.Other())
	require.Equal(t, PositionFlank, PositionPocket.Other())
	require.Equal(t, PositionAny, PositionAny.Other())
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("123", "alice")

	require.Equal(t, "123", p.DiscordID)
	require.Equal(t, "alice", p.DiscordName)
	require.Equal(t, PositionAny, p.PreferredPosition)
	require.Nil(t, p.Elo1v1)
	require.Nil(t, p.EloTeam)
	require.Empty(t, p.PreferredCivs)
	require.Zero(t, p.GamesPlayed)
	require.NotNil(t, p.PositionStats[PositionFlank])
	require.NotNil(t, p.PositionStats[PositionPocket])
}

func TestSetElo(t *testing.T) {
	p := NewPlayer("123", "alice")

	elo := 1100
	p.SetElo(&elo, nil)
	require.NotNil(t, p.Elo1v1)
	require.Equal(t, 1100, *p.Elo1v1)
	require.Nil(t, p.EloTeam)

	// A nil update keeps the stored rating.
	team := 1200
	p.SetElo(nil, &team)
	require.Equal(t, 1100, *p.Elo1v1)
	require.Equal(t, 1200, *p.EloTeam)
}

func TestPreferredCivs(t *testing.T) {
	p := NewPlayer("123", "alice")

	p.AddPreferredCiv("franks")
	p.AddPreferredCiv("britons")
	p.AddPreferredCiv("franks")
	require.Len(t, p.PreferredCivs, 2)

	p.RemovePreferredCiv("franks")
	require.Len(t, p.PreferredCivs, 1)
	require.Contains(t, p.PreferredCivs, "britons")

	// Removing an absent civ is harmless.
	p.RemovePreferredCiv("huns")
	require.Len(t, p.PreferredCivs, 1)
}

func TestRecordResult(t *testing.T) {
	p := NewPlayer("123", "alice")

	p.RecordResult(true, PositionFlank, "britons")
	p.RecordResult(false, PositionFlank, "britons")
	p.RecordResult(true, PositionPocket, "franks")

	require.Equal(t, 3, p.GamesPlayed)
	require.Equal(t, 2, p.GamesWon)
	require.InDelta(t, 66.666, p.WinRate(), 0.01)

	require.Equal(t, 2, p.PositionGames(PositionFlank))
	require.InDelta(t, 50.0, p.PositionWinRate(PositionFlank), 1e-9)
	require.Equal(t, 1, p.PositionGames(PositionPocket))
	require.InDelta(t, 100.0, p.PositionWinRate(PositionPocket), 1e-9)

	require.InDelta(t, 50.0, p.CivWinRate("britons"), 1e-9)
	require.InDelta(t, 100.0, p.CivWinRate("franks"), 1e-9)
	require.Zero(t, p.CivWinRate("huns"))
}

func TestRatesWithNoGames(t *testing.T) {
	p := NewPlayer("123", "alice")

	require.Zero(t, p.WinRate())
	require.Zero(t, p.PositionWinRate(PositionFlank))
	require.Zero(t, p.PositionGames(PositionPocket))
	require.Zero(t, p.CivWinRate("britons"))
}
