package balancer

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"aoe2-balancer/internal/civdata"
	"aoe2-balancer/internal/constants"
	"aoe2-balancer/internal/domain"
)

// CivSuggester recommends a civilization per player given their
// position, the map and what teammates and opponents already picked.
// Every fallback chain ends in a random pick, never an error.
type CivSuggester struct {
	catalog *civdata.Catalog
	logger  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCivSuggester(catalog *civdata.Catalog, rng *rand.Rand, logger zerolog.Logger) *CivSuggester {
	return &CivSuggester{catalog: catalog, logger: logger, rng: rng}
}

// CivsForPosition lists civilizations whose tier for the position is
// at or above the threshold. For the Any position a civilization
// qualifies on its better tier.
func (s *CivSuggester) CivsForPosition(position domain.Position, tierThreshold domain.Tier) []string {
	var out []string
	for _, name := range s.catalog.Names() {
		civ, _ := s.catalog.Civ(name)
		if civ.TierFor(position).AtLeast(tierThreshold) {
			out = append(out, name)
		}
	}
	return out
}

// CivsForMap lists civilizations whose suitability score for the map
// meets the threshold.
func (s *CivSuggester) CivsForMap(mapName string, threshold int) []string {
	var out []string
	for _, name := range s.catalog.Names() {
		civ, _ := s.catalog.Civ(name)
		if civ.GoodForMap(mapName, threshold) {
			out = append(out, name)
		}
	}
	return out
}

// Suggest picks a civilization for one player. Filters apply in
// order: position tier, advisory map fit, teammate duplicates. The
// player's own preferences short-circuit the synergy and counter
// heuristics.
func (s *CivSuggester) Suggest(
	player *domain.Player,
	position domain.Position,
	mapName string,
	teamCivs []string,
	enemyCivs []string,
	tierThreshold domain.Tier,
) string {
	candidates := toSet(s.CivsForPosition(position, tierThreshold))

	// The map filter is advisory: when nothing fits both the position
	// and the map, the position-filtered set stands.
	if mapName != "" {
		mapFit := toSet(s.CivsForMap(mapName, constants.MapFitThreshold))
		narrowed := intersect(candidates, mapFit)
		if len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	for _, civ := range teamCivs {
		delete(candidates, civ)
	}

	if preferred := intersectKeys(candidates, player.PreferredCivs); len(preferred) > 0 {
		return s.pick(preferred)
	}

	if len(teamCivs) > 0 {
		if best := s.aboveMeanBy(candidates, teamCivs, func(civ *domain.Civilization, other string) int {
			return civ.SynergyWith(other)
		}); len(best) > 0 {
			return s.pick(best)
		}
	}

	if len(enemyCivs) > 0 {
		if best := s.aboveMeanBy(candidates, enemyCivs, func(civ *domain.Civilization, other string) int {
			return civ.CounterAgainst(other)
		}); len(best) > 0 {
			return s.pick(best)
		}
	}

	if len(candidates) > 0 {
		return s.pick(sortedKeys(candidates))
	}

	// Nothing survived the filters; fall back to the whole catalog.
	return s.pick(s.catalog.Names())
}

// SuggestForTeam suggests a civilization for every member, players
// with the most stated preferences first, each suggestion seeing the
// picks made before it.
func (s *CivSuggester) SuggestForTeam(
	team *domain.Team,
	mapName string,
	enemyCivs []string,
	tierThreshold domain.Tier,
) map[string]string {
	ordered := make([]*domain.TeamMember, 0, len(team.Members))
	for i := range team.Members {
		ordered = append(ordered, &team.Members[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Player.PreferredCivs) > len(ordered[j].Player.PreferredCivs)
	})

	suggestions := make(map[string]string, len(team.Members))
	var teamCivs []string

	for _, member := range ordered {
		civ := s.Suggest(member.Player, member.Position, mapName, teamCivs, enemyCivs, tierThreshold)
		suggestions[member.Player.DiscordID] = civ
		teamCivs = append(teamCivs, civ)
	}

	return suggestions
}

// SuggestForComposition suggests civilizations team by team in a
// fixed order. Each team sees the finalized picks of the teams
// processed before it as enemy civilizations, so later teams act on
// strictly more information than earlier ones.
func (s *CivSuggester) SuggestForComposition(
	comp domain.Composition,
	mapName string,
	tierThreshold domain.Tier,
) map[string]string {
	all := make(map[string]string)
	var enemyCivs []string

	for _, team := range comp {
		suggestions := s.SuggestForTeam(team, mapName, enemyCivs, tierThreshold)
		for id, civ := range suggestions {
			all[id] = civ
		}
		for _, m := range team.Members {
			if civ, ok := suggestions[m.Player.DiscordID]; ok {
				enemyCivs = append(enemyCivs, civ)
			}
		}
	}

	return all
}

// aboveMeanBy scores every candidate by the summed metric against the
// reference civilizations and keeps those strictly above the mean.
func (s *CivSuggester) aboveMeanBy(
	candidates map[string]struct{},
	reference []string,
	metric func(civ *domain.Civilization, other string) int,
) []string {
	if len(candidates) == 0 {
		return nil
	}

	scores := make(map[string]int, len(candidates))
	var total int
	for name := range candidates {
		civ, ok := s.catalog.Civ(name)
		if !ok {
			continue
		}
		var score int
		for _, other := range reference {
			score += metric(civ, other)
		}
		scores[name] = score
		total += score
	}

	if len(scores) == 0 {
		return nil
	}

	mean := float64(total) / float64(len(scores))
	var out []string
	for name, score := range scores {
		if float64(score) > mean {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *CivSuggester) pick(civs []string) string {
	if len(civs) == 0 {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return civs[s.rng.Intn(len(civs))]
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func intersectKeys(set map[string]struct{}, other map[string]struct{}) []string {
	var out []string
	for k := range set {
		if _, ok := other[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
