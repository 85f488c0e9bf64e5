package balancer

import (
	"github.com/montanaflynn/stats"

	"aoe2-balancer/internal/config"
	"aoe2-balancer/internal/domain"
)

// Scorer turns a player's ratings, preferences and history into a
// comparable number, and aggregates those into team-level metrics.
type Scorer struct {
	cfg config.BalanceConfig
}

func NewScorer(cfg config.BalanceConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// BaseScore blends the two elo ratings by the configured weights.
// A player with a single rating is scored on that rating alone; a
// player with no ratings scores 0.
func (s *Scorer) BaseScore(p *domain.Player) float64 {
	switch {
	case p.Elo1v1 == nil && p.EloTeam == nil:
		return 0
	case p.Elo1v1 == nil:
		return float64(*p.EloTeam)
	case p.EloTeam == nil:
		return float64(*p.Elo1v1)
	}
	return s.cfg.Elo1v1Weight*float64(*p.Elo1v1) + s.cfg.EloTeamWeight*float64(*p.EloTeam)
}

// PlayerScore is the base score adjusted for how well the assigned
// position matches the player's preference and history.
func (s *Scorer) PlayerScore(p *domain.Player, position domain.Position) float64 {
	base := s.BaseScore(p)

	factor := 1.0
	switch {
	case position == p.PreferredPosition:
		factor = s.cfg.PositionFactorMax
	case p.PreferredPosition == domain.PositionAny:
		factor = 1.0
	default:
		factor = s.cfg.PositionFactorMin
	}

	// Historical performance in this position nudges the factor by at
	// most 5% either way.
	if rec, ok := p.PositionStats[position]; ok && rec.Games > 0 {
		winRate := float64(rec.Wins) / float64(rec.Games)
		factor *= 0.95 + winRate*0.1
	}

	return base * factor
}

// TeamScore sums member scores under their assigned positions.
func (s *Scorer) TeamScore(team *domain.Team) float64 {
	var total float64
	for _, m := range team.Members {
		total += s.PlayerScore(m.Player, m.Position)
	}
	return total
}

// DiffPercent is the spread between the strongest and weakest team as
// a percentage of the combined score. Zero for fewer than two teams or
// an all-zero pool.
func (s *Scorer) DiffPercent(comp domain.Composition) float64 {
	if len(comp) < 2 {
		return 0
	}

	var sum float64
	minScore, maxScore := 0.0, 0.0
	for i, team := range comp {
		score := s.TeamScore(team)
		sum += score
		if i == 0 || score < minScore {
			minScore = score
		}
		if i == 0 || score > maxScore {
			maxScore = score
		}
	}

	if sum == 0 {
		return 0
	}
	return (maxScore - minScore) / sum * 100
}

// Report summarizes how even a composition is.
type Report struct {
	TeamScores  []float64
	Mean        float64
	StdDev      float64
	DiffPercent float64
	Balanced    bool
}

// Report computes the per-team scores and summary statistics for a
// composition.
func (s *Scorer) Report(comp domain.Composition) Report {
	scores := make([]float64, 0, len(comp))
	for _, team := range comp {
		scores = append(scores, s.TeamScore(team))
	}

	mean, _ := stats.Mean(scores)
	stdDev, _ := stats.StandardDeviation(scores)
	diff := s.DiffPercent(comp)

	return Report{
		TeamScores:  scores,
		Mean:        mean,
		StdDev:      stdDev,
		DiffPercent: diff,
		Balanced:    diff <= s.cfg.AcceptableDiffPercent,
	}
}

// IsBalanced reports whether the composition's spread is within the
// configured acceptable percentage.
func (s *Scorer) IsBalanced(comp domain.Composition) bool {
	return s.DiffPercent(comp) <= s.cfg.AcceptableDiffPercent
}
