package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"aoe2-balancer/internal/civdata"
	"aoe2-balancer/internal/config"
	"aoe2-balancer/internal/service"
)

// Bot is the Discord front end: it parses prefix commands, calls into
// the services and renders the results as channel messages.
type Bot struct {
	session *discordgo.Session
	roster  *service.RosterService
	balance *service.BalanceService
	catalog *civdata.Catalog
	prefix  string
	logger  zerolog.Logger

	// lastPlans remembers the most recent balance result per channel
	// so a game outcome can be recorded against it.
	mu        sync.Mutex
	lastPlans map[string]service.MatchPlan
}

func New(
	cfg *config.Config,
	roster *service.RosterService,
	balance *service.BalanceService,
	catalog *civdata.Catalog,
	logger zerolog.Logger,
) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session:   session,
		roster:    roster,
		balance:   balance,
		catalog:   catalog,
		prefix:    cfg.CommandPrefix,
		logger:    logger,
		lastPlans: make(map[string]service.MatchPlan),
	}
	session.AddHandler(b.onMessage)

	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}
	b.logger.Info().Str("prefix", b.prefix).Msg("discord session opened")
	return nil
}

func (b *Bot) Stop(ctx context.Context) error {
	b.logger.Info().Msg("closing discord session")
	return b.session.Close()
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.prefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	b.logger.Debug().
		Str("command", command).
		Str("author", m.Author.ID).
		Str("channel", m.ChannelID).
		Msg("command received")

	ctx := context.Background()

	var reply string
	switch command {
	case "register":
		reply = b.handleRegister(ctx, m, args)
	case "setpos":
		reply = b.handleSetPosition(ctx, m, args)
	case "civ":
		reply = b.handlePreferredCiv(ctx, m, args)
	case "stats":
		reply = b.handleStats(ctx, m)
	case "history":
		reply = b.handleHistory(ctx, m)
	case "positions":
		reply = b.handlePositions(ctx, m)
	case "balance":
		reply = b.handleBalance(ctx, m, args)
	case "record":
		reply = b.handleRecord(ctx, m, args)
	case "civs":
		reply = b.handleCivList()
	case "help":
		reply = b.helpText()
	default:
		return
	}

	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.logger.Error().Err(err).Str("channel", m.ChannelID).Msg("failed to send reply")
	}
}
