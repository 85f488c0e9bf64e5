package domain

import "strings"

// Tier is a coarse quality rating for a civilization in one position,
// best (S) to worst (D).
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

var tierRanks = map[Tier]int{
	TierS: 0,
	TierA: 1,
	TierB: 2,
	TierC: 3,
	TierD: 4,
}

// ParseTier converts a string to a Tier, defaulting to C when
// unrecognized.
func ParseTier(s string) Tier {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := tierRanks[t]; ok {
		return t
	}
	return TierC
}

// Rank returns the ordinal of the tier; lower is better.
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return tierRanks[TierC]
}

// AtLeast reports whether t is the same tier as other or better.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() <= other.Rank()
}

// CivRating rates a civilization for one position: an overall 1-10
// score plus per-phase strength scores.
type CivRating struct {
	Tier      Tier
	Score     int
	EarlyGame int
	MidGame   int
	LateGame  int
}

type Civilization struct {
	Name        string
	DisplayName string

	FlankRating  CivRating
	PocketRating CivRating

	Strengths   []string
	UniqueUnits []string
	TeamBonus   string

	// MapRatings maps a map name to a 1-10 suitability score.
	MapRatings map[string]int

	// Synergies and Counters map another civilization's name to a
	// 1-10 score.
	Synergies map[string]int
	Counters  map[string]int
}

// RatingFor returns the rating for an assignable position. For Any the
// better of the two ratings (by score, then tier) is returned.
func (c *Civilization) RatingFor(position Position) CivRating {
	switch position {
	case PositionFlank:
		return c.FlankRating
	case PositionPocket:
		return c.PocketRating
	}
	if c.FlankRating.Score > c.PocketRating.Score {
		return c.FlankRating
	}
	if c.PocketRating.Score > c.FlankRating.Score {
		return c.PocketRating
	}
	if c.FlankRating.Tier.Rank() <= c.PocketRating.Tier.Rank() {
		return c.FlankRating
	}
	return c.PocketRating
}

// TierFor returns the tier for a position; for Any the better of the
// two position tiers.
func (c *Civilization) TierFor(position Position) Tier {
	switch position {
	case PositionFlank:
		return c.FlankRating.Tier
	case PositionPocket:
		return c.PocketRating.Tier
	}
	if c.FlankRating.Tier.Rank() <= c.PocketRating.Tier.Rank() {
		return c.FlankRating.Tier
	}
	return c.PocketRating.Tier
}

// ScoreFor returns the 1-10 score for a position; for Any the better
// of the two.
func (c *Civilization) ScoreFor(position Position) int {
	switch position {
	case PositionFlank:
		return c.FlankRating.Score
	case PositionPocket:
		return c.PocketRating.Score
	}
	if c.FlankRating.Score > c.PocketRating.Score {
		return c.FlankRating.Score
	}
	return c.PocketRating.Score
}

// BestPosition returns the position this civilization is stronger in.
func (c *Civilization) BestPosition() Position {
	if c.FlankRating.Score > c.PocketRating.Score {
		return PositionFlank
	}
	if c.PocketRating.Score > c.FlankRating.Score {
		return PositionPocket
	}
	if c.FlankRating.Tier.Rank() <= c.PocketRating.Tier.Rank() {
		return PositionFlank
	}
	return PositionPocket
}

// GoodForMap reports whether the civilization's suitability score for
// the map meets the threshold.
func (c *Civilization) GoodForMap(mapName string, threshold int) bool {
	return c.MapRatings[mapName] >= threshold
}

// SynergyWith returns the synergy score with another civilization,
// 0 when unknown.
func (c *Civilization) SynergyWith(civ string) int {
	return c.Synergies[civ]
}

// CounterAgainst returns the counter score against another
// civilization, 0 when unknown.
func (c *Civilization) CounterAgainst(civ string) int {
	return c.Counters[civ]
}
