package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"aoe2-balancer/internal/balancer"
	"aoe2-balancer/internal/constants"
	"aoe2-balancer/internal/domain"
	"aoe2-balancer/internal/repository"
)

// MatchPlan is one ranked team composition annotated with its balance
// report and, when requested, civilization suggestions per player.
type MatchPlan struct {
	Composition domain.Composition
	Report      balancer.Report
	CivPicks    map[string]string
}

// BalanceService orchestrates a balancing request end to end: load
// the pool, refresh stale ratings, search for compositions and
// annotate the results.
type BalanceService struct {
	roster    *RosterService
	balancer  *balancer.TeamBalancer
	analyzer  *balancer.PositionAnalyzer
	suggester *balancer.CivSuggester
	repo      *repository.PlayerRepository
	logger    zerolog.Logger
}

func NewBalanceService(
	roster *RosterService,
	teamBalancer *balancer.TeamBalancer,
	analyzer *balancer.PositionAnalyzer,
	suggester *balancer.CivSuggester,
	repo *repository.PlayerRepository,
	logger zerolog.Logger,
) *BalanceService {
	return &BalanceService{
		roster:    roster,
		balancer:  teamBalancer,
		analyzer:  analyzer,
		suggester: suggester,
		repo:      repo,
		logger:    logger,
	}
}

// BalanceRequest describes one balancing call.
type BalanceRequest struct {
	DiscordIDs         []string
	TeamSize           int
	NumCompositions    int
	RespectPreferences bool
	RefreshRatings     bool
	MapName            string
	SuggestCivs        bool
	TierThreshold      domain.Tier
}

// Balance produces ranked match plans for the requested pool.
func (s *BalanceService) Balance(ctx context.Context, req BalanceRequest) ([]MatchPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	players, err := s.repo.GetMany(ctx, req.DiscordIDs)
	if err != nil {
		return nil, err
	}

	if req.RefreshRatings {
		if err := s.roster.RefreshRatings(ctx, players); err != nil {
			s.logger.Warn().Err(err).Msg("rating refresh failed, balancing with stored ratings")
		}
	}

	numCompositions := req.NumCompositions
	if numCompositions <= 0 {
		numCompositions = constants.DefaultCompositions
	}

	compositions, err := s.balancer.Generate(players, req.TeamSize, numCompositions, req.RespectPreferences)
	if err != nil {
		return nil, fmt.Errorf("balancing failed: %w", err)
	}

	threshold := req.TierThreshold
	if threshold == "" {
		threshold = domain.TierB
	}

	plans := make([]MatchPlan, 0, len(compositions))
	for _, comp := range compositions {
		plan := MatchPlan{
			Composition: comp,
			Report:      s.balancer.Report(comp),
		}
		if req.SuggestCivs {
			plan.CivPicks = s.suggester.SuggestForComposition(comp, req.MapName, threshold)
		}
		plans = append(plans, plan)
	}

	s.logger.Info().
		Int("players", len(players)).
		Int("team_size", req.TeamSize).
		Int("plans", len(plans)).
		Bool("civs_suggested", req.SuggestCivs).
		Msg("balancing completed")

	return plans, nil
}

// SuggestPositions recommends a position for each registered player
// in the pool.
func (s *BalanceService) SuggestPositions(ctx context.Context, discordIDs []string) (map[string]domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	players, err := s.repo.GetMany(ctx, discordIDs)
	if err != nil {
		return nil, err
	}
	return s.analyzer.SuggestPositions(players), nil
}

// SuggestCivs recommends a civilization for each member of a chosen
// composition.
func (s *BalanceService) SuggestCivs(comp domain.Composition, mapName string, threshold domain.Tier) map[string]string {
	if threshold == "" {
		threshold = domain.TierB
	}
	return s.suggester.SuggestForComposition(comp, mapName, threshold)
}
