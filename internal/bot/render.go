package bot

import (
	"fmt"
	"strings"

	"aoe2-balancer/internal/domain"
	"aoe2-balancer/internal/repository"
	"aoe2-balancer/internal/service"
)

func formatElo(elo *int) string {
	if elo == nil {
		return "unrated"
	}
	return fmt.Sprintf("%d", *elo)
}

func renderStats(name string, p *domain.Player) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", name)
	fmt.Fprintf(&sb, "Ratings: 1v1 %s, team %s\n", formatElo(p.Elo1v1), formatElo(p.EloTeam))
	fmt.Fprintf(&sb, "Record: %d games, %.1f%% win rate\n", p.GamesPlayed, p.WinRate())
	fmt.Fprintf(&sb, "Preferred position: %s\n", p.PreferredPosition)

	for _, pos := range []domain.Position{domain.PositionFlank, domain.PositionPocket} {
		if rec, ok := p.PositionStats[pos]; ok && rec.Games > 0 {
			fmt.Fprintf(&sb, "As %s: %d games, %.1f%% win rate\n", pos, rec.Games, p.PositionWinRate(pos))
		}
	}

	if len(p.PreferredCivs) > 0 {
		civs := make([]string, 0, len(p.PreferredCivs))
		for civ := range p.PreferredCivs {
			civs = append(civs, civ)
		}
		fmt.Fprintf(&sb, "Preferred civilizations: %s\n", strings.Join(civs, ", "))
	}
	return sb.String()
}

func renderHistory(name string, entries []repository.HistoryEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Recent games for %s**\n", name)
	for _, e := range entries {
		outcome := "loss"
		if e.Won {
			outcome = "win"
		}
		line := fmt.Sprintf("- %s: %s as %s", e.PlayedAt.Format("2006-01-02"), outcome, e.Position)
		if e.Civilization != "" {
			line += fmt.Sprintf(" (%s)", e.Civilization)
		}
		if e.MapName != "" {
			line += fmt.Sprintf(" on %s", e.MapName)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func renderPlans(plans []service.MatchPlan, mapName string) string {
	var sb strings.Builder
	if mapName != "" {
		fmt.Fprintf(&sb, "Map: **%s**\n", mapName)
	}

	for i, plan := range plans {
		balanced := ""
		if plan.Report.Balanced {
			balanced = " ✓"
		}
		fmt.Fprintf(&sb, "**Option %d** (diff %.2f%%%s)\n", i+1, plan.Report.DiffPercent, balanced)

		for teamIdx, team := range plan.Composition {
			fmt.Fprintf(&sb, "Team %d (%.0f):\n", teamIdx+1, plan.Report.TeamScores[teamIdx])
			for _, member := range team.Members {
				line := fmt.Sprintf("  - %s [%s]", member.Player.DiscordName, member.Position)
				if civ, ok := plan.CivPicks[member.Player.DiscordID]; ok && civ != "" {
					line += fmt.Sprintf(" — %s", civ)
				}
				sb.WriteString(line + "\n")
			}
		}
	}
	return sb.String()
}
