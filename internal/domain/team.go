package domain

import (
	"sort"
	"strings"
)

// TeamMember is a player slotted into a team with an assigned position
// and, once suggested, a civilization.
type TeamMember struct {
	Player       *Player
	Position     Position
	Civilization string
}

type Team struct {
	Members []TeamMember
}

// AddMember appends a player to the team. If the player is already a
// member the existing slot is updated in place instead of duplicated.
func (t *Team) AddMember(player *Player, position Position, civilization string) {
	for i := range t.Members {
		if t.Members[i].Player.DiscordID == player.DiscordID {
			t.Members[i].Position = position
			if civilization != "" {
				t.Members[i].Civilization = civilization
			}
			return
		}
	}
	t.Members = append(t.Members, TeamMember{Player: player, Position: position, Civilization: civilization})
}

func (t *Team) RemoveMember(discordID string) bool {
	for i := range t.Members {
		if t.Members[i].Player.DiscordID == discordID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Team) Member(discordID string) *TeamMember {
	for i := range t.Members {
		if t.Members[i].Player.DiscordID == discordID {
			return &t.Members[i]
		}
	}
	return nil
}

func (t *Team) MembersByPosition(position Position) []TeamMember {
	var out []TeamMember
	for _, m := range t.Members {
		if m.Position == position {
			out = append(out, m)
		}
	}
	return out
}

func (t *Team) Size() int {
	return len(t.Members)
}

// Fingerprint identifies the team by its player set only, ignoring
// positions and civilizations.
func (t *Team) Fingerprint() string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.Player.DiscordID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// Composition is one complete partition of the player pool into teams.
type Composition []*Team

// Fingerprint identifies which players co-occur in which team,
// independent of team order and position/civilization assignments.
func (c Composition) Fingerprint() string {
	fps := make([]string, 0, len(c))
	for _, team := range c {
		fps = append(fps, team.Fingerprint())
	}
	sort.Strings(fps)
	return strings.Join(fps, "|")
}

// Players returns every player in the composition, team by team.
func (c Composition) Players() []*Player {
	var out []*Player
	for _, team := range c {
		for _, m := range team.Members {
			out = append(out, m.Player)
		}
	}
	return out
}
