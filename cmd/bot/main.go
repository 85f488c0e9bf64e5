package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/fx"

	"aoe2-balancer/internal/bot"
	"aoe2-balancer/internal/config"
	"aoe2-balancer/internal/constants"
	fxmodules "aoe2-balancer/internal/fx"
	"aoe2-balancer/internal/logger"
	"aoe2-balancer/internal/server"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	discordBot *bot.Bot,
	statusServer *server.Server,
	cfg *config.Config,
	db *sql.DB,
) {
	log := logger.WithLevel(cfg.LogLevel)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: statusServer.Handler(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := discordBot.Start(ctx); err != nil {
				return fmt.Errorf("failed to start discord bot: %w", err)
			}

			go func() {
				log.Info().Str("addr", srv.Addr).Msg("status server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("status server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := discordBot.Stop(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("error closing discord session")
			}

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("status server shutdown failed")
				return err
			}
			log.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
