package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"aoe2-balancer/internal/domain"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

// Get loads a player with their position, civilization and preference
// data. Returns sql.ErrNoRows when the player is not registered.
func (r *PlayerRepository) Get(ctx context.Context, discordID string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT discord_id, discord_name, steam_nickname, elo_1v1, elo_team,
		       preferred_position, games_played, games_won, registered_at, updated_at
		FROM players WHERE discord_id = ?`, discordID)

	p, err := scanPlayer(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadStats(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to load stats for player %s: %w", discordID, err)
	}
	return p, nil
}

// GetMany loads the given players, failing if any of them is missing.
func (r *PlayerRepository) GetMany(ctx context.Context, discordIDs []string) ([]*domain.Player, error) {
	players := make([]*domain.Player, 0, len(discordIDs))
	for _, id := range discordIDs {
		p, err := r.Get(ctx, id)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player %s is not registered", id)
		}
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]*domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT discord_id, discord_name, steam_nickname, elo_1v1, elo_team,
		       preferred_position, games_played, games_won, registered_at, updated_at
		FROM players ORDER BY discord_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range players {
		if err := r.loadStats(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to load stats for player %s: %w", p.DiscordID, err)
		}
	}
	return players, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (discord_id, discord_name, steam_nickname, elo_1v1, elo_team,
		                     preferred_position, games_played, games_won, registered_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (discord_id) DO UPDATE SET
			discord_name = excluded.discord_name,
			steam_nickname = excluded.steam_nickname,
			elo_1v1 = excluded.elo_1v1,
			elo_team = excluded.elo_team,
			preferred_position = excluded.preferred_position,
			games_played = excluded.games_played,
			games_won = excluded.games_won,
			updated_at = excluded.updated_at`,
		p.DiscordID, p.DiscordName, p.SteamNickname, nullableInt(p.Elo1v1), nullableInt(p.EloTeam),
		string(p.PreferredPosition), p.GamesPlayed, p.GamesWon, p.RegisteredAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("discord_id", p.DiscordID).Msg("failed to upsert player")
		return err
	}
	return nil
}

func (r *PlayerRepository) UpdateElo(ctx context.Context, discordID string, elo1v1, eloTeam *int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET elo_1v1 = COALESCE(?, elo_1v1),
		    elo_team = COALESCE(?, elo_team),
		    updated_at = ?
		WHERE discord_id = ?`,
		nullableInt(elo1v1), nullableInt(eloTeam), time.Now(), discordID)
	return err
}

func (r *PlayerRepository) SetPreferredPosition(ctx context.Context, discordID string, position domain.Position) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET preferred_position = ?, updated_at = ? WHERE discord_id = ?`,
		string(position), time.Now(), discordID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PlayerRepository) AddPreferredCiv(ctx context.Context, discordID, civ string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferred_civs (discord_id, civilization)
		VALUES (?, ?)
		ON CONFLICT (discord_id, civilization) DO NOTHING`, discordID, civ)
	return err
}

func (r *PlayerRepository) RemovePreferredCiv(ctx context.Context, discordID, civ string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM preferred_civs WHERE discord_id = ? AND civilization = ?`, discordID, civ)
	return err
}

func (r *PlayerRepository) loadStats(ctx context.Context, p *domain.Player) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT position, games, wins FROM position_stats WHERE discord_id = ?`, p.DiscordID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var position string
		var games, wins int
		if err := rows.Scan(&position, &games, &wins); err != nil {
			return err
		}
		p.PositionStats[domain.ParsePosition(position)] = &domain.PositionRecord{Games: games, Wins: wins}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	civRows, err := r.db.QueryContext(ctx, `
		SELECT civilization, games, wins FROM civ_stats WHERE discord_id = ?`, p.DiscordID)
	if err != nil {
		return err
	}
	defer civRows.Close()

	for civRows.Next() {
		var civ string
		var games, wins int
		if err := civRows.Scan(&civ, &games, &wins); err != nil {
			return err
		}
		p.CivStats[civ] = &domain.CivRecord{Games: games, Wins: wins}
	}
	if err := civRows.Err(); err != nil {
		return err
	}

	prefRows, err := r.db.QueryContext(ctx, `
		SELECT civilization FROM preferred_civs WHERE discord_id = ?`, p.DiscordID)
	if err != nil {
		return err
	}
	defer prefRows.Close()

	for prefRows.Next() {
		var civ string
		if err := prefRows.Scan(&civ); err != nil {
			return err
		}
		p.PreferredCivs[civ] = struct{}{}
	}
	return prefRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var (
		p          domain.Player
		elo1v1     sql.NullInt64
		eloTeam    sql.NullInt64
		position   string
		registered time.Time
		updated    time.Time
	)

	err := row.Scan(&p.DiscordID, &p.DiscordName, &p.SteamNickname, &elo1v1, &eloTeam,
		&position, &p.GamesPlayed, &p.GamesWon, &registered, &updated)
	if err != nil {
		return nil, err
	}

	if elo1v1.Valid {
		v := int(elo1v1.Int64)
		p.Elo1v1 = &v
	}
	if eloTeam.Valid {
		v := int(eloTeam.Int64)
		p.EloTeam = &v
	}
	p.PreferredPosition = domain.ParsePosition(position)
	p.RegisteredAt = registered
	p.UpdatedAt = updated
	p.PreferredCivs = make(map[string]struct{})
	p.PositionStats = map[domain.Position]*domain.PositionRecord{
		domain.PositionFlank:  {},
		domain.PositionPocket: {},
	}
	p.CivStats = make(map[string]*domain.CivRecord)

	return &p, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
