package balancer

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"aoe2-balancer/internal/constants"
	"aoe2-balancer/internal/domain"
)

// TeamBalancer searches the space of ways to partition a player pool
// into equal teams and ranks the candidates by how even they are.
//
// The search is exhaustive up to maxSamples candidate partitions and
// switches to uniform sampling above that, so large pools stay cheap
// at the cost of a probabilistic result.
//
// One balancer instance is safe for concurrent use; the fingerprint
// history and RNG are the only mutable state and sit behind a mutex.
type TeamBalancer struct {
	scorer *Scorer
	logger zerolog.Logger

	maxSamples int

	mu      sync.Mutex
	rng     *rand.Rand
	history *fingerprintHistory
}

func NewTeamBalancer(scorer *Scorer, rng *rand.Rand, logger zerolog.Logger) *TeamBalancer {
	return &TeamBalancer{
		scorer:     scorer,
		logger:     logger,
		maxSamples: constants.MaxPartitionSamples,
		rng:        rng,
		history:    newFingerprintHistory(constants.FingerprintHistorySize),
	}
}

// Generate returns up to numCompositions team compositions for the
// pool, best balanced first. The pool size must be an exact multiple
// of teamSize.
func (b *TeamBalancer) Generate(players []*domain.Player, teamSize, numCompositions int, respectPreferences bool) ([]domain.Composition, error) {
	if teamSize <= 0 {
		return nil, fmt.Errorf("team size must be positive, got %d", teamSize)
	}
	if len(players)%teamSize != 0 {
		return nil, fmt.Errorf("number of players (%d) must be divisible by team size (%d)", len(players), teamSize)
	}
	if numCompositions <= 0 {
		numCompositions = constants.DefaultCompositions
	}

	numTeams := len(players) / teamSize
	partitions := enumeratePartitions(len(players), teamSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	sampled := false
	if len(partitions) > b.maxSamples {
		b.rng.Shuffle(len(partitions), func(i, j int) {
			partitions[i], partitions[j] = partitions[j], partitions[i]
		})
		partitions = partitions[:b.maxSamples]
		sampled = true
	}

	type candidate struct {
		comp domain.Composition
		cost float64
	}

	candidates := make([]candidate, 0, len(partitions))
	for _, partition := range partitions {
		comp := make(domain.Composition, 0, numTeams)
		for _, indices := range partition {
			teamPlayers := make([]*domain.Player, 0, teamSize)
			for _, idx := range indices {
				teamPlayers = append(teamPlayers, players[idx])
			}
			comp = append(comp, b.buildTeam(teamPlayers, respectPreferences))
		}

		candidates = append(candidates, candidate{comp: comp, cost: b.compositionCost(comp)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cost < candidates[j].cost
	})

	if len(candidates) > numCompositions {
		candidates = candidates[:numCompositions]
	}

	out := make([]domain.Composition, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.comp)
	}

	b.logger.Debug().
		Int("players", len(players)).
		Int("team_size", teamSize).
		Int("teams", numTeams).
		Int("partitions", len(partitions)).
		Bool("sampled", sampled).
		Int("returned", len(out)).
		Msg("generated team compositions")

	return out, nil
}

// IsBalanced reports whether a composition's score spread is within
// the configured acceptable percentage.
func (b *TeamBalancer) IsBalanced(comp domain.Composition) bool {
	return b.scorer.IsBalanced(comp)
}

// Report exposes the scorer's balance summary for a composition.
func (b *TeamBalancer) Report(comp domain.Composition) Report {
	return b.scorer.Report(comp)
}

// compositionCost is the ranking metric: the score spread, rewarded
// when the grouping has not been seen recently and penalized when it
// has. Novel fingerprints are recorded as a side effect. Callers must
// hold b.mu.
func (b *TeamBalancer) compositionCost(comp domain.Composition) float64 {
	diff := b.scorer.DiffPercent(comp)

	fp := comp.Fingerprint()
	if b.history.Contains(fp) {
		return diff * constants.RepeatPenaltyFactor
	}
	b.history.Record(fp)
	return diff * constants.NoveltyBonusFactor
}

// buildTeam assigns positions to a team's players. When preferences
// are respected, players with a specific preference claim it first
// come first served in pool order; everyone else fills the remaining
// slots in encounter order. Otherwise an alternating position multiset
// is shuffled over the players.
func (b *TeamBalancer) buildTeam(teamPlayers []*domain.Player, respectPreferences bool) *domain.Team {
	team := &domain.Team{}
	slots := b.positionSlots(len(teamPlayers))

	if !respectPreferences {
		b.rng.Shuffle(len(slots), func(i, j int) {
			slots[i], slots[j] = slots[j], slots[i]
		})
		for i, p := range teamPlayers {
			team.AddMember(p, slots[i], "")
		}
		return team
	}

	available := map[domain.Position]int{}
	for _, pos := range slots {
		available[pos]++
	}

	granted := make(map[string]domain.Position, len(teamPlayers))
	for _, p := range teamPlayers {
		pref := p.PreferredPosition
		if pref == domain.PositionAny {
			continue
		}
		if available[pref] > 0 {
			granted[p.DiscordID] = pref
			available[pref]--
		}
	}

	remaining := make([]domain.Position, 0, len(teamPlayers))
	for _, pos := range []domain.Position{domain.PositionFlank, domain.PositionPocket} {
		for i := 0; i < available[pos]; i++ {
			remaining = append(remaining, pos)
		}
	}

	next := 0
	for _, p := range teamPlayers {
		if pos, ok := granted[p.DiscordID]; ok {
			team.AddMember(p, pos, "")
			continue
		}
		team.AddMember(p, remaining[next], "")
		next++
	}

	return team
}

// positionSlots builds the position multiset for a team: alternating
// flank and pocket, plus one random position when the size is odd.
func (b *TeamBalancer) positionSlots(teamSize int) []domain.Position {
	slots := make([]domain.Position, 0, teamSize)
	for i := 0; i < teamSize/2; i++ {
		slots = append(slots, domain.PositionFlank, domain.PositionPocket)
	}
	if teamSize%2 == 1 {
		extra := domain.PositionFlank
		if b.rng.Intn(2) == 1 {
			extra = domain.PositionPocket
		}
		slots = append(slots, extra)
	}
	return slots
}

// enumeratePartitions lists every way to split n players into teams of
// the given size. Each partition appears exactly once: the lowest
// unplaced player always anchors the next team, so no permutation of
// the same grouping is generated twice.
func enumeratePartitions(n, teamSize int) [][][]int {
	var partitions [][][]int

	unplaced := make([]int, n)
	for i := range unplaced {
		unplaced[i] = i
	}

	var build func(remaining []int, acc [][]int)
	build = func(remaining []int, acc [][]int) {
		if len(remaining) == 0 {
			partition := make([][]int, len(acc))
			for i, team := range acc {
				partition[i] = append([]int(nil), team...)
			}
			partitions = append(partitions, partition)
			return
		}

		anchor := remaining[0]
		rest := remaining[1:]
		forEachCombination(len(rest), teamSize-1, func(combo []int) {
			team := make([]int, 0, teamSize)
			team = append(team, anchor)
			used := make(map[int]bool, teamSize-1)
			for _, idx := range combo {
				team = append(team, rest[idx])
				used[idx] = true
			}

			next := make([]int, 0, len(rest)-len(combo))
			for i, v := range rest {
				if !used[i] {
					next = append(next, v)
				}
			}

			build(next, append(acc[:len(acc):len(acc)], team))
		})
	}

	build(unplaced, nil)
	return partitions
}

// forEachCombination invokes fn with every k-sized index combination
// out of n, in lexicographic order. The slice passed to fn is reused
// between calls.
func forEachCombination(n, k int, fn func([]int)) {
	if k < 0 || k > n {
		return
	}
	if k == 0 {
		fn(nil)
		return
	}

	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}

	for {
		fn(combo)

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}
