package fx

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"aoe2-balancer/internal/api"
	"aoe2-balancer/internal/balancer"
	"aoe2-balancer/internal/bot"
	"aoe2-balancer/internal/civdata"
	"aoe2-balancer/internal/config"
	"aoe2-balancer/internal/database"
	"aoe2-balancer/internal/logger"
	"aoe2-balancer/internal/repository"
	"aoe2-balancer/internal/server"
	"aoe2-balancer/internal/service"
)

func ProvideScorer(cfg *config.Config) *balancer.Scorer {
	return balancer.NewScorer(cfg.Balance)
}

func ProvideTeamBalancer(scorer *balancer.Scorer, log zerolog.Logger) *balancer.TeamBalancer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return balancer.NewTeamBalancer(scorer, rng, log)
}

func ProvideCivSuggester(catalog *civdata.Catalog, log zerolog.Logger) *balancer.CivSuggester {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return balancer.NewCivSuggester(catalog, rng, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(civdata.Load),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewGameRepository),
	// api client
	fx.Provide(api.NewAoE2Client),
	// engine
	fx.Provide(ProvideScorer),
	fx.Provide(ProvideTeamBalancer),
	fx.Provide(balancer.NewPositionAnalyzer),
	fx.Provide(ProvideCivSuggester),
	// svc
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewBalanceService),
	// front ends
	fx.Provide(bot.New),
	fx.Provide(server.New),
)
