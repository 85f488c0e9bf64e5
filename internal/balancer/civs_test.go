package balancer

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aoe2-balancer/internal/civdata"
	"aoe2-balancer/internal/domain"
)

func newTestSuggester(t *testing.T) *CivSuggester {
	t.Helper()
	catalog, err := civdata.Load(zerolog.Nop())
	require.NoError(t, err)
	return NewCivSuggester(catalog, rand.New(rand.NewSource(1)), zerolog.Nop())
}

func TestCivsForPosition(t *testing.T) {
	s := newTestSuggester(t)

	t.Run("flank S tier", func(t *testing.T) {
		require.Equal(t, []string{"britons", "mayans"}, s.CivsForPosition(domain.PositionFlank, domain.TierS))
	})

	t.Run("pocket S tier", func(t *testing.T) {
		require.Equal(t, []string{"franks", "persians"}, s.CivsForPosition(domain.PositionPocket, domain.TierS))
	})

	t.Run("any position qualifies on the better tier", func(t *testing.T) {
		require.Equal(t, []string{"britons", "franks", "mayans", "persians"}, s.CivsForPosition(domain.PositionAny, domain.TierS))
	})

	t.Run("lower threshold widens the set", func(t *testing.T) {
		sTier := s.CivsForPosition(domain.PositionFlank, domain.TierS)
		aTier := s.CivsForPosition(domain.PositionFlank, domain.TierA)
		require.Greater(t, len(aTier), len(sTier))
		for _, name := range sTier {
			require.Contains(t, aTier, name)
		}
	})
}

func TestCivsForMap(t *testing.T) {
	s := newTestSuggester(t)

	islands := s.CivsForMap("islands", 7)
	require.Equal(t, []string{"berbers", "byzantines", "vikings"}, islands)

	require.Empty(t, s.CivsForMap("unknown_map", 7))
}

func TestSuggest(t *testing.T) {
	s := newTestSuggester(t)

	t.Run("player preference short-circuits heuristics", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))
		p.AddPreferredCiv("britons")

		civ := s.Suggest(p, domain.PositionFlank, "", nil, nil, domain.TierB)
		require.Equal(t, "britons", civ)
	})

	t.Run("teammate civilizations are never repeated", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		for i := 0; i < 20; i++ {
			civ := s.Suggest(p, domain.PositionFlank, "", []string{"britons"}, nil, domain.TierA)
			require.NotEqual(t, "britons", civ)
		}
	})

	t.Run("map filter narrows when the intersection is non-empty", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		// Among A-or-better flank civs only vikings rate 7+ on islands.
		civ := s.Suggest(p, domain.PositionFlank, "islands", nil, nil, domain.TierA)
		require.Equal(t, "vikings", civ)
	})

	t.Run("map filter is advisory when nothing fits both", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		// No S-tier pocket civ rates 7+ on islands; the position set stands.
		civ := s.Suggest(p, domain.PositionPocket, "islands", nil, nil, domain.TierS)
		require.Contains(t, []string{"franks", "persians"}, civ)
	})

	t.Run("synergy with teammates picks above the mean", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		// S-tier flank leaves britons and mayans; britons synergize
		// better with franks (8 vs 7).
		civ := s.Suggest(p, domain.PositionFlank, "", []string{"franks"}, nil, domain.TierS)
		require.Equal(t, "britons", civ)
	})

	t.Run("counters against enemies pick above the mean", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		// Britons counter teutons harder than mayans do (9 vs 8).
		civ := s.Suggest(p, domain.PositionFlank, "", nil, []string{"teutons"}, domain.TierS)
		require.Equal(t, "britons", civ)
	})

	t.Run("falls back to the whole catalog when filters empty the set", func(t *testing.T) {
		p := testPlayer("a", intPtr(1000), intPtr(1000))

		civ := s.Suggest(p, domain.PositionPocket, "", []string{"franks", "persians"}, nil, domain.TierS)
		require.NotEmpty(t, civ)
		require.Contains(t, s.catalog.Names(), civ)
	})
}

func TestSuggestForTeam(t *testing.T) {
	s := newTestSuggester(t)

	t.Run("players with stated preferences pick first", func(t *testing.T) {
		plain := testPlayer("plain", intPtr(1000), intPtr(1000))
		fan := testPlayer("fan", intPtr(1000), intPtr(1000))
		fan.AddPreferredCiv("mayans")

		team := &domain.Team{}
		team.AddMember(plain, domain.PositionFlank, "")
		team.AddMember(fan, domain.PositionFlank, "")

		suggestions := s.SuggestForTeam(team, "", nil, domain.TierS)
		require.Len(t, suggestions, 2)
		require.Equal(t, "mayans", suggestions["fan"])
		require.NotEqual(t, "mayans", suggestions["plain"])
	})

	t.Run("each member gets a distinct civilization", func(t *testing.T) {
		team := &domain.Team{}
		team.AddMember(testPlayer("a", intPtr(1000), intPtr(1000)), domain.PositionFlank, "")
		team.AddMember(testPlayer("b", intPtr(1000), intPtr(1000)), domain.PositionFlank, "")
		team.AddMember(testPlayer("c", intPtr(1000), intPtr(1000)), domain.PositionPocket, "")

		suggestions := s.SuggestForTeam(team, "arabia", nil, domain.TierB)
		require.Len(t, suggestions, 3)

		seen := make(map[string]struct{}, 3)
		for _, civ := range suggestions {
			_, dup := seen[civ]
			require.False(t, dup, "civilization %s suggested twice", civ)
			seen[civ] = struct{}{}
		}
	})
}

func TestSuggestForComposition(t *testing.T) {
	s := newTestSuggester(t)

	teamA := &domain.Team{}
	teamA.AddMember(testPlayer("a1", intPtr(1000), intPtr(1000)), domain.PositionFlank, "")
	teamA.AddMember(testPlayer("a2", intPtr(1000), intPtr(1000)), domain.PositionPocket, "")
	teamB := &domain.Team{}
	teamB.AddMember(testPlayer("b1", intPtr(1000), intPtr(1000)), domain.PositionFlank, "")
	teamB.AddMember(testPlayer("b2", intPtr(1000), intPtr(1000)), domain.PositionPocket, "")

	suggestions := s.SuggestForComposition(domain.Composition{teamA, teamB}, "arabia", domain.TierB)

	require.Len(t, suggestions, 4)
	for _, id := range []string{"a1", "a2", "b1", "b2"} {
		require.NotEmpty(t, suggestions[id])
		require.Contains(t, s.catalog.Names(), suggestions[id])
	}

	require.NotEqual(t, suggestions["a1"], suggestions["a2"])
	require.NotEqual(t, suggestions["b1"], suggestions["b2"])
}
