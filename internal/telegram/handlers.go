package telegram

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tris-bot/internal/constants"
	"tris-bot/internal/domain"
	"tris-bot/internal/engine"
)

// MessageSender is the slice of the Telegram client the handlers need.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// GameEngine is the engine surface the adapter renders from.
type GameEngine interface {
	Start(player domain.PlayerRef) engine.SessionView
	Apply(playerID int64, cmds []engine.Command) (engine.SessionView, bool, error)
	View(playerID int64) (engine.SessionView, bool)
	TopScores(limit int) []domain.ScoreRecord
	PlayerScore(playerID int64) (domain.ScoreRecord, bool)
}

type boardRef struct {
	chatID    int64
	messageID int
}

type Handler struct {
	bot    MessageSender
	engine GameEngine
	logger zerolog.Logger

	mu     sync.Mutex
	boards map[int64]boardRef
}

func NewHandler(bot MessageSender, eng GameEngine, logger zerolog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		engine: eng,
		logger: logger,
		boards: make(map[int64]boardRef),
	}
}

// ParseMoves maps a chat message onto a command batch. The whole text must
// consist of move codes; anything else is not a batch and gets ignored.
func ParseMoves(text string) ([]engine.Command, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return nil, false
	}
	cmds := make([]engine.Command, 0, len(trimmed))
	for _, r := range trimmed {
		switch r {
		case 'a':
			cmds = append(cmds, engine.CommandLeft)
		case 'd':
			cmds = append(cmds, engine.CommandRight)
		case 'w':
			cmds = append(cmds, engine.CommandRotate)
		case 's':
			cmds = append(cmds, engine.CommandHardDrop)
		case 'q':
			cmds = append(cmds, engine.CommandQuit)
		default:
			return nil, false
		}
	}
	return cmds, true
}

// HandleStart begins a new game for the sender, replacing the previous
// board message with a fresh one.
func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	player := playerRef(msg.From)

	h.mu.Lock()
	old, had := h.boards[player.ID]
	delete(h.boards, player.ID)
	h.mu.Unlock()
	if had {
		h.request(tgbotapi.NewDeleteMessage(old.chatID, old.messageID))
	}

	view := h.engine.Start(player)

	sent, err := h.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, Render(view)))
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", player.ID).Msg("failed to send board message")
		return
	}

	h.mu.Lock()
	h.boards[player.ID] = boardRef{chatID: msg.Chat.ID, messageID: sent.MessageID}
	h.mu.Unlock()
}

// HandleMoves applies a command batch and refreshes the board only when the
// batch changed the game state. The player's input message is deleted to
// keep the channel readable, as the board lives in one edited message.
func (h *Handler) HandleMoves(msg *tgbotapi.Message, cmds []engine.Command) {
	view, changed, err := h.engine.Apply(msg.From.ID, cmds)
	if err != nil {
		if !errors.Is(err, engine.ErrNoSession) {
			h.logger.Warn().Err(err).Int64("user_id", msg.From.ID).Msg("command batch failed")
		}
		return
	}

	if changed {
		h.updateBoard(msg.From.ID, msg.Chat.ID, view)
	}
	h.request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID))
}

// OnTick refreshes the board message after a gravity step changed the game.
func (h *Handler) OnTick(playerID int64, view engine.SessionView) {
	h.mu.Lock()
	ref, ok := h.boards[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}
	h.updateBoard(playerID, ref.chatID, view)
}

func (h *Handler) HandleTop(msg *tgbotapi.Message) {
	records := h.engine.TopScores(constants.LeaderboardLimit)
	if len(records) == 0 {
		h.send(tgbotapi.NewMessage(msg.Chat.ID, "No high scores yet"))
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Tris high scores:\n")
	for i, rec := range records {
		fmt.Fprintf(&sb, "%d. %s — %d pts (%s)\n",
			i+1, rec.Username, rec.BestScore, rec.BestScoreAt.Format("01/02"))
	}
	h.send(tgbotapi.NewMessage(msg.Chat.ID, sb.String()))
}

func (h *Handler) HandleMyScore(msg *tgbotapi.Message) {
	rec, ok := h.engine.PlayerScore(msg.From.ID)
	if !ok {
		h.send(tgbotapi.NewMessage(msg.Chat.ID, "No games on record yet. Start one with /tris"))
		return
	}

	text := fmt.Sprintf(
		"%s\nBest score: %d\nBest lines in one game: %d\nLongest game: %s\nGames played: %d\nTotal lines: %d\nTotal play time: %s",
		rec.Username,
		rec.BestScore,
		rec.BestLines,
		formatDuration(rec.BestDurationSeconds),
		rec.GamesPlayed,
		rec.TotalLines,
		formatDuration(rec.TotalPlaySeconds),
	)
	h.send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

func (h *Handler) HandleHelp(msg *tgbotapi.Message) {
	text := "Tris — falling blocks in your chat\n\n" +
		"/tris - start a new game\n" +
		"/top - top 10 scores\n" +
		"/me - your stats\n" +
		"/help - this message\n\n" +
		"Controls (send as plain text):\n" +
		"a - move left\n" +
		"d - move right\n" +
		"w - rotate\n" +
		"s - hard drop\n" +
		"q - end game\n\n" +
		"Codes combine: aaa moves left three times, wd rotates then moves right."
	h.send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

// updateBoard edits the live board message in place, falling back to a
// fresh message when the old one is gone. Adapter I/O failures stop here;
// they never reach the engine.
func (h *Handler) updateBoard(playerID, chatID int64, view engine.SessionView) {
	h.mu.Lock()
	ref, ok := h.boards[playerID]
	h.mu.Unlock()

	if ok {
		edit := tgbotapi.NewEditMessageText(ref.chatID, ref.messageID, Render(view))
		if _, err := h.bot.Send(edit); err == nil {
			return
		}
	}

	sent, err := h.bot.Send(tgbotapi.NewMessage(chatID, Render(view)))
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", playerID).Msg("failed to refresh board message")
		return
	}
	h.mu.Lock()
	h.boards[playerID] = boardRef{chatID: chatID, messageID: sent.MessageID}
	h.mu.Unlock()
}

func (h *Handler) send(msg tgbotapi.Chattable) {
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn().Err(err).Msg("failed to send message")
	}
}

func (h *Handler) request(msg tgbotapi.Chattable) {
	if _, err := h.bot.Request(msg); err != nil {
		h.logger.Debug().Err(err).Msg("telegram request failed")
	}
}

func playerRef(user *tgbotapi.User) domain.PlayerRef {
	name := user.FirstName
	if name == "" {
		name = user.UserName
	}
	avatar := ""
	if user.UserName != "" {
		avatar = "https://t.me/" + user.UserName
	}
	return domain.PlayerRef{ID: user.ID, Name: name, AvatarURL: avatar}
}
