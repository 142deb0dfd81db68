package fx

import (
	"go.uber.org/fx"

	"tris-bot/internal/config"
	"tris-bot/internal/engine"
	"tris-bot/internal/logger"
	"tris-bot/internal/repository"
	"tris-bot/internal/telegram"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// store
	fx.Provide(repository.NewScoreStore),
	// core
	fx.Provide(engine.New),
	// chat surface
	fx.Provide(telegram.NewBot),
)
