package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"aoe2-balancer/internal/domain"
	"aoe2-balancer/internal/repository"
	"aoe2-balancer/internal/service"
)

func (b *Bot) handleRegister(ctx context.Context, m *discordgo.MessageCreate, args []string) string {
	nickname := ""
	if len(args) > 0 {
		nickname = args[0]
	}

	player, err := b.roster.Register(ctx, m.Author.ID, m.Author.Username, nickname)
	if err != nil {
		b.logger.Error().Err(err).Str("author", m.Author.ID).Msg("registration failed")
		return fmt.Sprintf("Registration failed: %v", err)
	}

	if player.Elo1v1 == nil && player.EloTeam == nil {
		return fmt.Sprintf("Registered **%s** (no ratings found yet).", player.DiscordName)
	}
	return fmt.Sprintf("Registered **%s** — 1v1: %s, team: %s.",
		player.DiscordName, formatElo(player.Elo1v1), formatElo(player.EloTeam))
}

func (b *Bot) handleSetPosition(ctx context.Context, m *discordgo.MessageCreate, args []string) string {
	if len(args) == 0 {
		return "Usage: `setpos flank|pocket|any`"
	}

	position := domain.ParsePosition(args[0])
	if err := b.roster.SetPreferredPosition(ctx, m.Author.ID, position); err != nil {
		return fmt.Sprintf("Could not set position: %v", err)
	}
	return fmt.Sprintf("Preferred position set to **%s**.", position)
}

func (b *Bot) handlePreferredCiv(ctx context.Context, m *discordgo.MessageCreate, args []string) string {
	if len(args) < 2 {
		return "Usage: `civ add|remove <civilization>`"
	}

	civ := strings.ToLower(args[1])
	if _, ok := b.catalog.Civ(civ); !ok {
		return fmt.Sprintf("Unknown civilization **%s** — try `civs` for the full list.", args[1])
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "add":
		err = b.roster.AddPreferredCiv(ctx, m.Author.ID, civ)
	case "remove":
		err = b.roster.RemovePreferredCiv(ctx, m.Author.ID, civ)
	default:
		return "Usage: `civ add|remove <civilization>`"
	}
	if err != nil {
		return fmt.Sprintf("Could not update civilization preferences: %v", err)
	}
	return fmt.Sprintf("Civilization preferences updated (**%s**).", civ)
}

func (b *Bot) handleStats(ctx context.Context, m *discordgo.MessageCreate) string {
	target := m.Author.ID
	name := m.Author.Username
	if len(m.Mentions) > 0 {
		target = m.Mentions[0].ID
		name = m.Mentions[0].Username
	}

	player, err := b.roster.Player(ctx, target)
	if err != nil {
		return fmt.Sprintf("Could not load stats: %v", err)
	}
	return renderStats(name, player)
}

func (b *Bot) handleHistory(ctx context.Context, m *discordgo.MessageCreate) string {
	target := m.Author.ID
	name := m.Author.Username
	if len(m.Mentions) > 0 {
		target = m.Mentions[0].ID
		name = m.Mentions[0].Username
	}

	entries, err := b.roster.History(ctx, target, 10)
	if err != nil {
		return fmt.Sprintf("Could not load game history: %v", err)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("No recorded games for **%s** yet.", name)
	}
	return renderHistory(name, entries)
}

func (b *Bot) handlePositions(ctx context.Context, m *discordgo.MessageCreate) string {
	if len(m.Mentions) < 2 {
		return "Mention at least two players: `positions @a @b ...`"
	}

	ids := mentionIDs(m)
	suggestions, err := b.balance.SuggestPositions(ctx, ids)
	if err != nil {
		return fmt.Sprintf("Could not suggest positions: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("**Suggested positions**\n")
	for _, u := range m.Mentions {
		if pos, ok := suggestions[u.ID]; ok {
			fmt.Fprintf(&sb, "- %s → %s\n", u.Username, pos)
		}
	}
	return sb.String()
}

func (b *Bot) handleBalance(ctx context.Context, m *discordgo.MessageCreate, args []string) string {
	teamSize := 0
	mapName := ""
	for _, arg := range args {
		if strings.HasPrefix(arg, "<@") {
			continue
		}
		if n, err := strconv.Atoi(arg); err == nil && teamSize == 0 {
			teamSize = n
			continue
		}
		if _, ok := b.catalog.Map(strings.ToLower(arg)); ok {
			mapName = strings.ToLower(arg)
		}
	}

	ids := mentionIDs(m)
	if teamSize == 0 && len(ids) > 0 && len(ids)%2 == 0 {
		teamSize = len(ids) / 2
	}
	if len(ids) == 0 || teamSize == 0 {
		return "Usage: `balance <teamSize> @a @b ... [map]`"
	}

	plans, err := b.balance.Balance(ctx, service.BalanceRequest{
		DiscordIDs:         ids,
		TeamSize:           teamSize,
		RespectPreferences: true,
		RefreshRatings:     true,
		MapName:            mapName,
		SuggestCivs:        true,
	})
	if err != nil {
		return fmt.Sprintf("Balancing failed: %v", err)
	}
	if len(plans) == 0 {
		return "No valid team compositions found."
	}

	b.mu.Lock()
	b.lastPlans[m.ChannelID] = plans[0]
	b.mu.Unlock()

	return renderPlans(plans, mapName)
}

func (b *Bot) handleRecord(ctx context.Context, m *discordgo.MessageCreate, args []string) string {
	if len(args) == 0 {
		return "Usage: `record <winningTeamNumber>` after a `balance`"
	}
	winner, err := strconv.Atoi(args[0])
	if err != nil || winner < 1 {
		return "The winning team must be a team number from the last balance."
	}

	b.mu.Lock()
	plan, ok := b.lastPlans[m.ChannelID]
	if ok {
		delete(b.lastPlans, m.ChannelID)
	}
	b.mu.Unlock()
	if !ok {
		return "No balanced match to record in this channel — run `balance` first."
	}
	if winner > len(plan.Composition) {
		return fmt.Sprintf("The last match only had %d teams.", len(plan.Composition))
	}

	result := repository.GameResult{WinningTeam: winner - 1}
	for teamIdx, team := range plan.Composition {
		for _, member := range team.Members {
			result.Participants = append(result.Participants, repository.GameParticipant{
				DiscordID:    member.Player.DiscordID,
				TeamIndex:    teamIdx,
				Position:     member.Position,
				Civilization: plan.CivPicks[member.Player.DiscordID],
			})
		}
	}

	gameID, err := b.roster.RecordResult(ctx, result)
	if err != nil {
		return fmt.Sprintf("Could not record the result: %v", err)
	}
	return fmt.Sprintf("Result recorded (game `%s`) — congrats team %d!", gameID, winner)
}

func (b *Bot) handleCivList() string {
	var sb strings.Builder
	sb.WriteString("**Civilizations**\n")
	for _, name := range b.catalog.Names() {
		civ, _ := b.catalog.Civ(name)
		fmt.Fprintf(&sb, "- %s (flank %s / pocket %s)\n",
			civ.DisplayName, civ.FlankRating.Tier, civ.PocketRating.Tier)
	}
	return sb.String()
}

func (b *Bot) helpText() string {
	p := b.prefix
	return strings.Join([]string{
		"**Commands**",
		fmt.Sprintf("`%sregister <steamNickname>` — register and fetch your ratings", p),
		fmt.Sprintf("`%ssetpos flank|pocket|any` — set your preferred position", p),
		fmt.Sprintf("`%sciv add|remove <civilization>` — manage preferred civilizations", p),
		fmt.Sprintf("`%sstats [@player]` — show a player's record", p),
		fmt.Sprintf("`%shistory [@player]` — show a player's recent games", p),
		fmt.Sprintf("`%spositions @a @b ...` — suggest positions for a pool", p),
		fmt.Sprintf("`%sbalance <teamSize> @a @b ... [map]` — build balanced teams", p),
		fmt.Sprintf("`%srecord <winningTeam>` — record the outcome of the last balance", p),
		fmt.Sprintf("`%scivs` — list known civilizations", p),
	}, "\n")
}

func mentionIDs(m *discordgo.MessageCreate) []string {
	ids := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		ids = append(ids, u.ID)
	}
	return ids
}
