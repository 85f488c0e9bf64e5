package balancer

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aoe2-balancer/internal/domain"
)

func newTestBalancer(t *testing.T) *TeamBalancer {
	t.Helper()
	scorer := NewScorer(defaultBalanceConfig())
	return NewTeamBalancer(scorer, rand.New(rand.NewSource(1)), zerolog.Nop())
}

func TestGenerateValidation(t *testing.T) {
	b := newTestBalancer(t)

	t.Run("rejects non-positive team size", func(t *testing.T) {
		_, err := b.Generate([]*domain.Player{testPlayer("a", nil, nil)}, 0, 1, false)
		require.Error(t, err)
	})

	t.Run("rejects a pool not divisible by team size", func(t *testing.T) {
		players := make([]*domain.Player, 0, 5)
		for i := 0; i < 5; i++ {
			players = append(players, testPlayer(fmt.Sprintf("p%d", i), intPtr(1000), intPtr(1000)))
		}

		_, err := b.Generate(players, 2, 1, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "5")
		require.Contains(t, err.Error(), "2")
	})
}

func TestGeneratePartitions(t *testing.T) {
	b := newTestBalancer(t)

	players := []*domain.Player{
		testPlayer("a", intPtr(1000), intPtr(1000)),
		testPlayer("b", intPtr(1200), intPtr(1100)),
		testPlayer("c", intPtr(990), intPtr(990)),
		testPlayer("d", intPtr(950), intPtr(1050)),
	}

	comps, err := b.Generate(players, 2, 10, false)
	require.NoError(t, err)

	// Four players in teams of two have exactly three distinct groupings.
	require.Len(t, comps, 3)

	fingerprints := make(map[string]struct{}, len(comps))
	for _, comp := range comps {
		require.Len(t, comp, 2)

		seen := make(map[string]struct{}, 4)
		for _, team := range comp {
			require.Equal(t, 2, team.Size())
			for _, m := range team.Members {
				_, dup := seen[m.Player.DiscordID]
				require.False(t, dup, "player %s assigned twice", m.Player.DiscordID)
				seen[m.Player.DiscordID] = struct{}{}
			}
		}
		require.Len(t, seen, 4)

		fp := comp.Fingerprint()
		_, dup := fingerprints[fp]
		require.False(t, dup, "duplicate composition %s", fp)
		fingerprints[fp] = struct{}{}
	}
}

func TestGenerateRanksByBalance(t *testing.T) {
	b := newTestBalancer(t)

	// Weighted scores: a=1000, b=1140, c=990, d=1010. The only pairing
	// within the 3% threshold is {a,d} vs {b,c} at 2.90%, which splits
	// the strongest and weakest players across teams.
	players := []*domain.Player{
		testPlayer("a", intPtr(1000), intPtr(1000)),
		testPlayer("b", intPtr(1200), intPtr(1100)),
		testPlayer("c", intPtr(900), intPtr(1050)),
		testPlayer("d", intPtr(1100), intPtr(950)),
	}

	comps, err := b.Generate(players, 2, 3, false)
	require.NoError(t, err)
	require.NotEmpty(t, comps)

	require.Equal(t, "a,d|b,c", comps[0].Fingerprint())
	require.True(t, b.IsBalanced(comps[0]))

	report := b.Report(comps[0])
	require.LessOrEqual(t, report.DiffPercent, 3.0)
	require.True(t, report.Balanced)

	// Returned compositions are ordered best first.
	prev := -1.0
	for _, comp := range comps {
		diff := b.Report(comp).DiffPercent
		require.GreaterOrEqual(t, diff, prev)
		prev = diff
	}
}

func TestCompositionCostPenalizesRepeats(t *testing.T) {
	b := newTestBalancer(t)

	teamA := &domain.Team{}
	teamA.AddMember(testPlayer("a", intPtr(1000), intPtr(1000)), domain.PositionFlank, "")
	teamB := &domain.Team{}
	teamB.AddMember(testPlayer("b", intPtr(1200), intPtr(1200)), domain.PositionFlank, "")
	comp := domain.Composition{teamA, teamB}

	b.mu.Lock()
	first := b.compositionCost(comp)
	second := b.compositionCost(comp)
	b.mu.Unlock()

	require.Greater(t, first, 0.0)
	require.Greater(t, second, first)
	require.InDelta(t, first/0.8*1.2, second, 1e-9)
}

func TestGenerateSamplesLargeSearchSpaces(t *testing.T) {
	b := newTestBalancer(t)
	b.maxSamples = 3

	// Six players in teams of three enumerate ten partitions, above the
	// sample cap.
	players := make([]*domain.Player, 0, 6)
	for i := 0; i < 6; i++ {
		players = append(players, testPlayer(fmt.Sprintf("p%d", i), intPtr(1000+10*i), intPtr(1000)))
	}

	comps, err := b.Generate(players, 3, 10, false)
	require.NoError(t, err)
	require.Len(t, comps, 3)
}

func TestBuildTeamPreferences(t *testing.T) {
	t.Run("specific preferences claimed first come first served", func(t *testing.T) {
		b := newTestBalancer(t)

		first := testPlayer("first", intPtr(1000), intPtr(1000))
		first.PreferredPosition = domain.PositionFlank
		second := testPlayer("second", intPtr(1000), intPtr(1000))
		second.PreferredPosition = domain.PositionFlank

		team := b.buildTeam([]*domain.Player{first, second}, true)
		require.Equal(t, domain.PositionFlank, team.Member("first").Position)
		require.Equal(t, domain.PositionPocket, team.Member("second").Position)
	})

	t.Run("larger teams carry duplicate position slots", func(t *testing.T) {
		b := newTestBalancer(t)

		players := make([]*domain.Player, 0, 4)
		for _, id := range []string{"f1", "f2"} {
			p := testPlayer(id, intPtr(1000), intPtr(1000))
			p.PreferredPosition = domain.PositionFlank
			players = append(players, p)
		}
		for _, id := range []string{"x1", "x2"} {
			players = append(players, testPlayer(id, intPtr(1000), intPtr(1000)))
		}

		team := b.buildTeam(players, true)
		require.Equal(t, domain.PositionFlank, team.Member("f1").Position)
		require.Equal(t, domain.PositionFlank, team.Member("f2").Position)
		require.Equal(t, domain.PositionPocket, team.Member("x1").Position)
		require.Equal(t, domain.PositionPocket, team.Member("x2").Position)
	})

	t.Run("every player lands on an assignable position", func(t *testing.T) {
		b := newTestBalancer(t)

		players := make([]*domain.Player, 0, 4)
		for i := 0; i < 4; i++ {
			p := testPlayer(fmt.Sprintf("p%d", i), intPtr(1000), intPtr(1000))
			p.PreferredPosition = domain.PositionPocket
			players = append(players, p)
		}

		team := b.buildTeam(players, true)
		counts := map[domain.Position]int{}
		for _, m := range team.Members {
			counts[m.Position]++
		}
		require.Equal(t, 2, counts[domain.PositionFlank])
		require.Equal(t, 2, counts[domain.PositionPocket])
	})
}

func TestEnumeratePartitions(t *testing.T) {
	cases := []struct {
		n, teamSize, want int
	}{
		{2, 1, 1},
		{4, 2, 3},
		{6, 2, 15},
		{6, 3, 10},
		{8, 4, 35},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d players teams of %d", tc.n, tc.teamSize), func(t *testing.T) {
			partitions := enumeratePartitions(tc.n, tc.teamSize)
			require.Len(t, partitions, tc.want)

			for _, partition := range partitions {
				placed := make(map[int]struct{}, tc.n)
				for _, team := range partition {
					require.Len(t, team, tc.teamSize)
					for _, idx := range team {
						_, dup := placed[idx]
						require.False(t, dup)
						placed[idx] = struct{}{}
					}
				}
				require.Len(t, placed, tc.n)
			}
		})
	}
}
