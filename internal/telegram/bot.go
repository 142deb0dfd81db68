package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tris-bot/internal/config"
	"tris-bot/internal/constants"
	"tris-bot/internal/engine"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  zerolog.Logger
}

func NewBot(cfg *config.Config, eng *engine.Engine, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	handler := NewHandler(api, eng, logger)
	eng.Notify(handler.OnTick)

	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start consumes the long-poll update stream until Stop closes it. Slash
// commands drive the session lifecycle; any other text that consists only
// of move codes is applied to the sender's game as one batch.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = constants.UpdatePollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		msg := update.Message
		switch msg.Command() {
		case "tris":
			b.handler.HandleStart(msg)
		case "top", "highscores":
			b.handler.HandleTop(msg)
		case "me":
			b.handler.HandleMyScore(msg)
		case "help", "start":
			b.handler.HandleHelp(msg)
		default:
			if cmds, ok := ParseMoves(msg.Text); ok {
				b.handler.HandleMoves(msg, cmds)
			}
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}
