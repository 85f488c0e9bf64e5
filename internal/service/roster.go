package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aoe2-balancer/internal/api"
	"aoe2-balancer/internal/constants"
	"aoe2-balancer/internal/domain"
	"aoe2-balancer/internal/repository"
)

// RosterService manages player registration, rating refresh and game
// result recording.
type RosterService struct {
	client     *api.AoE2Client
	playerRepo *repository.PlayerRepository
	gameRepo   *repository.GameRepository
	logger     zerolog.Logger
}

func NewRosterService(
	client *api.AoE2Client,
	playerRepo *repository.PlayerRepository,
	gameRepo *repository.GameRepository,
	logger zerolog.Logger,
) *RosterService {
	return &RosterService{
		client:     client,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		logger:     logger,
	}
}

// Register creates or updates a player, pulling ratings for the steam
// nickname when one is given. A failed rating lookup is not fatal:
// the player is registered without ratings and scored accordingly.
func (s *RosterService) Register(ctx context.Context, discordID, discordName, steamNickname string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.playerRepo.Get(ctx, discordID)
	if err == sql.ErrNoRows {
		player = domain.NewPlayer(discordID, discordName)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	player.DiscordName = discordName
	if steamNickname != "" {
		player.SteamNickname = steamNickname
	}

	if player.SteamNickname != "" {
		apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		profile, err := s.client.GetProfile(apiCtx, player.SteamNickname)
		apiCancel()
		if err != nil {
			s.logger.Warn().Err(err).
				Str("discord_id", discordID).
				Str("steam_nickname", player.SteamNickname).
				Msg("rating lookup failed, registering without ratings")
		} else {
			player.SetElo(profile.Elo1v1, profile.EloTeam)
		}
	}

	if err := s.playerRepo.Upsert(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	s.logger.Info().
		Str("discord_id", discordID).
		Str("discord_name", discordName).
		Msg("player registered")
	return player, nil
}

// RefreshRatings re-fetches ratings for the given players
// concurrently. Lookup failures leave the stored ratings untouched.
func (s *RosterService) RefreshRatings(ctx context.Context, players []*domain.Player) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, p := range players {
		if p.SteamNickname == "" {
			continue
		}
		p := p
		g.Go(func() error {
			profile, err := s.client.GetProfile(gCtx, p.SteamNickname)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("discord_id", p.DiscordID).
					Msg("rating refresh failed, keeping stored ratings")
				return nil
			}
			p.SetElo(profile.Elo1v1, profile.EloTeam)
			return s.playerRepo.UpdateElo(gCtx, p.DiscordID, profile.Elo1v1, profile.EloTeam)
		})
	}

	return g.Wait()
}

// SetPreferredPosition updates a player's position preference.
func (s *RosterService) SetPreferredPosition(ctx context.Context, discordID string, position domain.Position) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.playerRepo.SetPreferredPosition(ctx, discordID, position); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("player %s is not registered", discordID)
		}
		return err
	}
	return nil
}

// AddPreferredCiv records a civilization preference.
func (s *RosterService) AddPreferredCiv(ctx context.Context, discordID, civ string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.playerRepo.AddPreferredCiv(ctx, discordID, civ)
}

// RemovePreferredCiv drops a civilization preference.
func (s *RosterService) RemovePreferredCiv(ctx context.Context, discordID, civ string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.playerRepo.RemovePreferredCiv(ctx, discordID, civ)
}

// Player returns a registered player.
func (s *RosterService) Player(ctx context.Context, discordID string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.playerRepo.Get(ctx, discordID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s is not registered", discordID)
	}
	return player, err
}

// Players returns every registered player.
func (s *RosterService) Players(ctx context.Context) ([]*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.playerRepo.List(ctx)
}

// RecordResult persists a finished game and updates all counters.
func (s *RosterService) RecordResult(ctx context.Context, result repository.GameResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.gameRepo.Record(ctx, result)
}

// History returns a player's recorded games, most recent first.
func (s *RosterService) History(ctx context.Context, discordID string, limit int) ([]repository.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.gameRepo.History(ctx, discordID, limit)
}
