package domain

import (
	"strings"
	"time"
)

// Position is one of the two team-game positions a player can occupy.
// Any is a valid preference but never an assignment target.
type Position string

const (
	PositionFlank  Position = "flank"
	PositionPocket Position = "pocket"
	PositionAny    Position = "any"
)

// ParsePosition converts a user-supplied string to a Position,
// defaulting to Any when unrecognized.
func ParsePosition(s string) Position {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PositionFlank):
		return PositionFlank
	case string(PositionPocket):
		return PositionPocket
	default:
		return PositionAny
	}
}

// Other returns the opposite assignable position. Any has no opposite
// and maps to itself.
func (p Position) Other() Position {
	switch p {
	case PositionFlank:
		return PositionPocket
	case PositionPocket:
		return PositionFlank
	default:
		return PositionAny
	}
}

// PositionRecord tracks games and wins in one position.
type PositionRecord struct {
	Games int
	Wins  int
}

// CivRecord tracks games and wins with one civilization.
type CivRecord struct {
	Games int
	Wins  int
}

type Player struct {
	DiscordID   string
	DiscordName string

	SteamNickname string

	// Ratings are optional: a player may have played only one ladder,
	// or none at all.
	Elo1v1  *int
	EloTeam *int

	PreferredPosition Position
	PreferredCivs     map[string]struct{}

	GamesPlayed int
	GamesWon    int

	PositionStats map[Position]*PositionRecord
	CivStats      map[string]*CivRecord

	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// NewPlayer returns a player with empty stats and no position preference.
func NewPlayer(discordID, discordName string) *Player {
	now := time.Now()
	return &Player{
		DiscordID:         discordID,
		DiscordName:       discordName,
		PreferredPosition: PositionAny,
		PreferredCivs:     make(map[string]struct{}),
		PositionStats: map[Position]*PositionRecord{
			PositionFlank:  {},
			PositionPocket: {},
		},
		CivStats:     make(map[string]*CivRecord),
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

func (p *Player) SetElo(elo1v1, eloTeam *int) {
	if elo1v1 != nil {
		p.Elo1v1 = elo1v1
	}
	if eloTeam != nil {
		p.EloTeam = eloTeam
	}
	p.UpdatedAt = time.Now()
}

func (p *Player) AddPreferredCiv(civ string) {
	if p.PreferredCivs == nil {
		p.PreferredCivs = make(map[string]struct{})
	}
	p.PreferredCivs[civ] = struct{}{}
}

func (p *Player) RemovePreferredCiv(civ string) {
	delete(p.PreferredCivs, civ)
}

// RecordResult updates the overall, per-position and per-civilization
// counters. Counters only ever grow; this is the single mutation path.
func (p *Player) RecordResult(won bool, position Position, civ string) {
	p.GamesPlayed++
	if won {
		p.GamesWon++
	}

	if rec, ok := p.PositionStats[position]; ok {
		rec.Games++
		if won {
			rec.Wins++
		}
	}

	if civ != "" {
		if p.CivStats == nil {
			p.CivStats = make(map[string]*CivRecord)
		}
		rec, ok := p.CivStats[civ]
		if !ok {
			rec = &CivRecord{}
			p.CivStats[civ] = rec
		}
		rec.Games++
		if won {
			rec.Wins++
		}
	}

	p.UpdatedAt = time.Now()
}

// WinRate returns the overall win rate as a percentage.
func (p *Player) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed) * 100
}

// PositionWinRate returns the win rate in a position as a percentage,
// 0 when the player has no games there.
func (p *Player) PositionWinRate(position Position) float64 {
	rec, ok := p.PositionStats[position]
	if !ok || rec.Games == 0 {
		return 0
	}
	return float64(rec.Wins) / float64(rec.Games) * 100
}

// PositionGames returns how many games the player has in a position.
func (p *Player) PositionGames(position Position) int {
	rec, ok := p.PositionStats[position]
	if !ok {
		return 0
	}
	return rec.Games
}

// CivWinRate returns the win rate with a civilization as a percentage.
func (p *Player) CivWinRate(civ string) float64 {
	rec, ok := p.CivStats[civ]
	if !ok || rec.Games == 0 {
		return 0
	}
	return float64(rec.Wins) / float64(rec.Games) * 100
}
