package balancer

import (
	"math"
	"sort"

	"aoe2-balancer/internal/constants"
	"aoe2-balancer/internal/domain"
)

// PositionAnalyzer recommends a position per player from performance
// and preference signals.
type PositionAnalyzer struct{}

func NewPositionAnalyzer() *PositionAnalyzer {
	return &PositionAnalyzer{}
}

// PositionScore rates how well a player fits a position: the win rate
// in that position (falling back to the overall win rate when the
// player never played it), plus a preference bonus.
func (a *PositionAnalyzer) PositionScore(p *domain.Player, position domain.Position) float64 {
	winRate := p.PositionWinRate(position)
	if winRate == 0 {
		winRate = p.WinRate()
	}

	switch p.PreferredPosition {
	case position:
		winRate += constants.PreferredPositionBonus
	case domain.PositionAny:
		winRate += constants.FlexPositionBonus
	}

	return winRate
}

// SuggestPositions assigns flank or pocket to every player. Players
// with the strongest directional signal are decided first, and each
// position is capped at half the pool so counts stay even regardless
// of preference skew. A player whose two scores tie lands on pocket.
func (a *PositionAnalyzer) SuggestPositions(players []*domain.Player) map[string]domain.Position {
	type scored struct {
		player *domain.Player
		flank  float64
		pocket float64
	}

	scores := make([]scored, 0, len(players))
	for _, p := range players {
		scores = append(scores, scored{
			player: p,
			flank:  a.PositionScore(p, domain.PositionFlank),
			pocket: a.PositionScore(p, domain.PositionPocket),
		})
	}

	// Stable sort keeps input order as the tie-break.
	sort.SliceStable(scores, func(i, j int) bool {
		return math.Abs(scores[i].flank-scores[i].pocket) > math.Abs(scores[j].flank-scores[j].pocket)
	})

	suggestions := make(map[string]domain.Position, len(players))
	counts := map[domain.Position]int{
		domain.PositionFlank:  0,
		domain.PositionPocket: 0,
	}
	half := len(players) / 2

	for _, s := range scores {
		best := domain.PositionPocket
		if s.flank > s.pocket {
			best = domain.PositionFlank
		}

		assigned := best
		if counts[best] >= half {
			assigned = best.Other()
		}

		suggestions[s.player.DiscordID] = assigned
		counts[assigned]++
	}

	return suggestions
}
