package balancer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"aoe2-balancer/internal/domain"
)

func TestPositionScore(t *testing.T) {
	analyzer := NewPositionAnalyzer()

	t.Run("position win rate plus preference bonus", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))
		p.PreferredPosition = domain.PositionFlank
		p.PositionStats[domain.PositionFlank] = &domain.PositionRecord{Games: 4, Wins: 3}

		require.InDelta(t, 75.0+20.0, analyzer.PositionScore(p, domain.PositionFlank), 1e-9)
	})

	t.Run("falls back to the overall win rate", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))
		p.GamesPlayed = 10
		p.GamesWon = 6

		require.InDelta(t, 60.0, analyzer.PositionScore(p, domain.PositionPocket)-5.0, 1e-9)
	})

	t.Run("flexible preference adds the smaller bonus to both", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		require.InDelta(t, 5.0, analyzer.PositionScore(p, domain.PositionFlank), 1e-9)
		require.InDelta(t, 5.0, analyzer.PositionScore(p, domain.PositionPocket), 1e-9)
	})
}

func TestSuggestPositions(t *testing.T) {
	analyzer := NewPositionAnalyzer()

	t.Run("caps each position at half the pool", func(t *testing.T) {
		players := make([]*domain.Player, 0, 6)
		for i := 0; i < 6; i++ {
			p := testPlayer(fmt.Sprintf("p%d", i), intPtr(1000), intPtr(1000))
			p.PreferredPosition = domain.PositionFlank
			players = append(players, p)
		}

		suggestions := analyzer.SuggestPositions(players)
		require.Len(t, suggestions, 6)

		counts := map[domain.Position]int{}
		for _, pos := range suggestions {
			counts[pos]++
		}
		require.Equal(t, 3, counts[domain.PositionFlank])
		require.Equal(t, 3, counts[domain.PositionPocket])
	})

	t.Run("every player gets an assignable position", func(t *testing.T) {
		players := make([]*domain.Player, 0, 5)
		for i := 0; i < 5; i++ {
			players = append(players, testPlayer(fmt.Sprintf("p%d", i), intPtr(1000), intPtr(1000)))
		}

		suggestions := analyzer.SuggestPositions(players)
		require.Len(t, suggestions, 5)

		counts := map[domain.Position]int{}
		for id, pos := range suggestions {
			require.Contains(t, []domain.Position{domain.PositionFlank, domain.PositionPocket}, pos, "player %s", id)
			counts[pos]++
		}
		diff := counts[domain.PositionFlank] - counts[domain.PositionPocket]
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, 1)
	})

	t.Run("strong signal beats the cap ordering", func(t *testing.T) {
		veteran := testPlayer("veteran", intPtr(1200), intPtr(1200))
		veteran.PositionStats[domain.PositionPocket] = &domain.PositionRecord{Games: 20, Wins: 18}

		filler := testPlayer("filler", intPtr(1000), intPtr(1000))

		suggestions := analyzer.SuggestPositions([]*domain.Player{filler, veteran})
		require.Equal(t, domain.PositionPocket, suggestions["veteran"])
		require.Equal(t, domain.PositionFlank, suggestions["filler"])
	})

	t.Run("ties go to pocket until the cap forces flank", func(t *testing.T) {
		a := testPlayer("a", intPtr(1000), intPtr(1000))
		b := testPlayer("b", intPtr(1000), intPtr(1000))

		suggestions := analyzer.SuggestPositions([]*domain.Player{a, b})
		require.Equal(t, domain.PositionPocket, suggestions["a"])
		require.Equal(t, domain.PositionFlank, suggestions["b"])
	})
}
