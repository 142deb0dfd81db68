package main

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"tris-bot/internal/constants"
	"tris-bot/internal/engine"
	fxmodules "tris-bot/internal/fx"
	"tris-bot/internal/telegram"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runBot),
	).Run()
}

func runBot(
	lc fx.Lifecycle,
	bot *telegram.Bot,
	eng *engine.Engine,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go bot.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down bot")
			bot.Stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := eng.Close(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("engine shutdown failed")
				return err
			}
			logger.Info().Msg("bot stopped gracefully")
			return nil
		},
	})
}
