package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"aoe2-balancer/internal/domain"
)

// GameParticipant describes one player's part in a finished game.
type GameParticipant struct {
	DiscordID    string
	TeamIndex    int
	Position     domain.Position
	Civilization string
}

// GameResult is a finished game to be recorded.
type GameResult struct {
	MapName      string
	WinningTeam  int
	PlayedAt     time.Time
	Participants []GameParticipant
}

type GameRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewGameRepository(db *sql.DB, logger zerolog.Logger) *GameRepository {
	return &GameRepository{db: db, logger: logger}
}

// Record persists a game and rolls its outcome into every
// participant's counters in one transaction. This is the only code
// path that mutates the per-player counters; they only ever increase.
func (r *GameRepository) Record(ctx context.Context, result GameResult) (string, error) {
	gameID, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate game id: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	playedAt := result.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, map_name, winning_team, played_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		gameID, result.MapName, result.WinningTeam, playedAt, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert game: %w", err)
	}

	for _, part := range result.Participants {
		won := part.TeamIndex == result.WinningTeam

		_, err = tx.ExecContext(ctx, `
			INSERT INTO game_players (game_id, discord_id, team_index, position, civilization, won)
			VALUES (?, ?, ?, ?, ?, ?)`,
			gameID, part.DiscordID, part.TeamIndex, string(part.Position), part.Civilization, won)
		if err != nil {
			return "", fmt.Errorf("failed to insert game player %s: %w", part.DiscordID, err)
		}

		if err := r.applyResult(ctx, tx, part, won); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit game result: %w", err)
	}

	r.logger.Info().
		Str("game_id", gameID).
		Str("map", result.MapName).
		Int("winning_team", result.WinningTeam).
		Int("participants", len(result.Participants)).
		Msg("game result recorded")

	return gameID, nil
}

func (r *GameRepository) applyResult(ctx context.Context, tx *sql.Tx, part GameParticipant, won bool) error {
	win := 0
	if won {
		win = 1
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE players
		SET games_played = games_played + 1,
		    games_won = games_won + ?,
		    updated_at = ?
		WHERE discord_id = ?`, win, time.Now(), part.DiscordID)
	if err != nil {
		return fmt.Errorf("failed to update counters for %s: %w", part.DiscordID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("player %s is not registered", part.DiscordID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO position_stats (discord_id, position, games, wins)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (discord_id, position) DO UPDATE SET
			games = games + 1,
			wins = wins + excluded.wins`,
		part.DiscordID, string(part.Position), win)
	if err != nil {
		return fmt.Errorf("failed to update position stats for %s: %w", part.DiscordID, err)
	}

	if part.Civilization != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO civ_stats (discord_id, civilization, games, wins)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (discord_id, civilization) DO UPDATE SET
				games = games + 1,
				wins = wins + excluded.wins`,
			part.DiscordID, part.Civilization, win)
		if err != nil {
			return fmt.Errorf("failed to update civ stats for %s: %w", part.DiscordID, err)
		}
	}

	return nil
}

// HistoryEntry is one game from a player's point of view.
type HistoryEntry struct {
	GameID       string
	MapName      string
	Position     domain.Position
	Civilization string
	Won          bool
	PlayedAt     time.Time
}

// History returns a player's recorded games, most recent first.
func (r *GameRepository) History(ctx context.Context, discordID string, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.map_name, gp.position, gp.civilization, gp.won, g.played_at
		FROM games g
		JOIN game_players gp ON gp.game_id = g.id
		WHERE gp.discord_id = ?
		ORDER BY g.played_at DESC
		LIMIT ?`, discordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var position string
		if err := rows.Scan(&e.GameID, &e.MapName, &position, &e.Civilization, &e.Won, &e.PlayedAt); err != nil {
			return nil, err
		}
		e.Position = domain.ParsePosition(position)
		out = append(out, e)
	}
	return out, rows.Err()
}
