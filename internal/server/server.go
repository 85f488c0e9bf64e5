package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"aoe2-balancer/internal/api"
	"aoe2-balancer/internal/civdata"
	"aoe2-balancer/internal/middleware"
	"aoe2-balancer/internal/service"
)

// Server is a small JSON status API next to the Discord front end,
// mainly for dashboards and scripted balancing.
type Server struct {
	roster  *service.RosterService
	balance *service.BalanceService
	catalog *civdata.Catalog
	client  *api.AoE2Client
	logger  zerolog.Logger
}

func New(
	roster *service.RosterService,
	balance *service.BalanceService,
	catalog *civdata.Catalog,
	client *api.AoE2Client,
	logger zerolog.Logger,
) *Server {
	return &Server{roster: roster, balance: balance, catalog: catalog, client: client, logger: logger}
}

// Handler builds the full HTTP handler chain: routes wrapped in CORS
// and request-ID middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/players", s.handlePlayers)
	mux.HandleFunc("GET /api/civilizations", s.handleCivs)
	mux.HandleFunc("GET /api/ratelimit", s.handleRateLimit)
	mux.HandleFunc("POST /api/balance", s.handleBalance)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.client.GetRateLimitInfo())
}

type playerJSON struct {
	DiscordID         string  `json:"discord_id"`
	DiscordName       string  `json:"discord_name"`
	Elo1v1            *int    `json:"elo_1v1"`
	EloTeam           *int    `json:"elo_team"`
	PreferredPosition string  `json:"preferred_position"`
	GamesPlayed       int     `json:"games_played"`
	WinRate           float64 `json:"win_rate"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.roster.Players(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list players")
		writeError(w, http.StatusInternalServerError, "failed to list players")
		return
	}

	out := make([]playerJSON, 0, len(players))
	for _, p := range players {
		out = append(out, playerJSON{
			DiscordID:         p.DiscordID,
			DiscordName:       p.DiscordName,
			Elo1v1:            p.Elo1v1,
			EloTeam:           p.EloTeam,
			PreferredPosition: string(p.PreferredPosition),
			GamesPlayed:       p.GamesPlayed,
			WinRate:           p.WinRate(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCivs(w http.ResponseWriter, r *http.Request) {
	type civJSON struct {
		Name       string `json:"name"`
		FlankTier  string `json:"flank_tier"`
		PocketTier string `json:"pocket_tier"`
	}

	out := make([]civJSON, 0, s.catalog.Len())
	for _, name := range s.catalog.Names() {
		civ, _ := s.catalog.Civ(name)
		out = append(out, civJSON{
			Name:       civ.DisplayName,
			FlankTier:  string(civ.FlankRating.Tier),
			PocketTier: string(civ.PocketRating.Tier),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type balanceRequestJSON struct {
	DiscordIDs         []string `json:"discord_ids"`
	TeamSize           int      `json:"team_size"`
	NumCompositions    int      `json:"num_compositions"`
	RespectPreferences *bool    `json:"respect_preferences"`
	MapName            string   `json:"map_name"`
	SuggestCivs        bool     `json:"suggest_civs"`
}

type teamJSON struct {
	Score   float64      `json:"score"`
	Members []memberJSON `json:"members"`
}

type memberJSON struct {
	DiscordID    string `json:"discord_id"`
	DiscordName  string `json:"discord_name"`
	Position     string `json:"position"`
	Civilization string `json:"civilization,omitempty"`
}

type planJSON struct {
	Teams       []teamJSON `json:"teams"`
	DiffPercent float64    `json:"diff_percent"`
	Balanced    bool       `json:"balanced"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	respect := true
	if req.RespectPreferences != nil {
		respect = *req.RespectPreferences
	}

	plans, err := s.balance.Balance(r.Context(), service.BalanceRequest{
		DiscordIDs:         req.DiscordIDs,
		TeamSize:           req.TeamSize,
		NumCompositions:    req.NumCompositions,
		RespectPreferences: respect,
		MapName:            req.MapName,
		SuggestCivs:        req.SuggestCivs,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	out := make([]planJSON, 0, len(plans))
	for _, plan := range plans {
		pj := planJSON{
			DiffPercent: plan.Report.DiffPercent,
			Balanced:    plan.Report.Balanced,
		}
		for teamIdx, team := range plan.Composition {
			tj := teamJSON{Score: plan.Report.TeamScores[teamIdx]}
			for _, m := range team.Members {
				tj.Members = append(tj.Members, memberJSON{
					DiscordID:    m.Player.DiscordID,
					DiscordName:  m.Player.DiscordName,
					Position:     string(m.Position),
					Civilization: plan.CivPicks[m.Player.DiscordID],
				})
			}
			pj.Teams = append(pj.Teams, tj)
		}
		out = append(out, pj)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
