package engine

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tris-bot/internal/config"
	"tris-bot/internal/constants"
	"tris-bot/internal/domain"
	"tris-bot/internal/game"
	"tris-bot/internal/repository"
)

// ErrNoSession is returned for commands from a player with no live session.
var ErrNoSession = errors.New("no active session")

type Command int

const (
	CommandLeft Command = iota
	CommandRight
	CommandRotate
	CommandHardDrop
	CommandQuit
)

// SessionView is what the presentation layer gets to render: the board with
// the falling piece overlaid, plus the session counters.
type SessionView struct {
	SessionID      string
	GameOver       bool
	Score          int
	Lines          int
	ElapsedSeconds int
	Grid           [][]game.Cell
}

type session struct {
	id        string
	player    domain.PlayerRef
	game      *game.Game
	persisted bool
}

// Engine owns at most one session and one gravity ticker per player. Every
// mutation, whether a player command batch or a tick, runs as one step
// under the engine lock, so a session is never touched by two actors at
// once.
type Engine struct {
	store  *repository.ScoreStore
	logger zerolog.Logger
	tick   time.Duration

	mu       sync.Mutex
	sessions map[int64]*session
	cancels  map[int64]context.CancelFunc
	notify   func(playerID int64, view SessionView)
	rng      *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

func New(cfg *config.Config, store *repository.ScoreStore, logger zerolog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	return &Engine{
		store:    store,
		logger:   logger,
		tick:     cfg.TickInterval,
		sessions: make(map[int64]*session),
		cancels:  make(map[int64]context.CancelFunc),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:      ctx,
		cancel:   cancel,
		group:    group,
	}
}

// Notify registers the callback invoked when a gravity tick changes a
// session. Must be set before any session starts.
func (e *Engine) Notify(fn func(playerID int64, view SessionView)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notify = fn
}

// Start creates a fresh session for the player, replacing any existing one.
// A prior terminal session gets its score finalized first; a prior live one
// is discarded without scoring. The old gravity ticker is cancelled before
// the new one is created, so two tickers never drive the same player.
func (e *Engine) Start(player domain.PlayerRef) SessionView {
	e.mu.Lock()

	if cancel, ok := e.cancels[player.ID]; ok {
		cancel()
		delete(e.cancels, player.ID)
	}
	if old, ok := e.sessions[player.ID]; ok {
		e.finalizeLocked(old)
		delete(e.sessions, player.ID)
		e.logger.Debug().
			Int64("user_id", player.ID).
			Str("session_id", old.id).
			Bool("game_over", old.game.Over()).
			Msg("session replaced")
	}

	s := &session{
		id:     gonanoid.Must(),
		player: player,
		game:   game.New(e.rng),
	}
	e.sessions[player.ID] = s

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancels[player.ID] = cancel
	e.group.Go(func() error {
		e.runTicker(ctx, player.ID, s)
		return nil
	})

	view := e.viewOf(s)
	e.mu.Unlock()

	e.logger.Info().
		Int64("user_id", player.ID).
		Str("session_id", s.id).
		Msg("session started")
	return view
}

// Apply runs a command batch as one atomic step. A quit inside the batch
// aborts the remainder. The changed flag compares state across the whole
// batch, so the adapter knows whether a refresh is warranted. All commands
// are no-ops on a terminal session.
func (e *Engine) Apply(playerID int64, cmds []Command) (SessionView, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[playerID]
	if !ok {
		return SessionView{}, false, ErrNoSession
	}

	before := s.game.Snapshot()
	for _, cmd := range cmds {
		switch cmd {
		case CommandLeft:
			s.game.MoveLeft()
		case CommandRight:
			s.game.MoveRight()
		case CommandRotate:
			s.game.Rotate()
		case CommandHardDrop:
			s.game.HardDrop()
		case CommandQuit:
			s.game.ForceQuit()
		}
		if cmd == CommandQuit {
			break
		}
	}
	after := s.game.Snapshot()

	if s.game.Over() {
		e.finalizeLocked(s)
	}

	return e.viewOf(s), snapshotChanged(before, after), nil
}

// Tick applies one gravity step to the player's session, exactly as the
// background ticker would.
func (e *Engine) Tick(playerID int64) (SessionView, error) {
	e.mu.Lock()
	s, ok := e.sessions[playerID]
	e.mu.Unlock()
	if !ok {
		return SessionView{}, ErrNoSession
	}
	view, _, _ := e.tickStep(playerID, s)
	return view, nil
}

// View returns the current session view for the player, if any.
func (e *Engine) View(playerID int64) (SessionView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[playerID]
	if !ok {
		return SessionView{}, false
	}
	return e.viewOf(s), true
}

func (e *Engine) TopScores(limit int) []domain.ScoreRecord {
	return e.store.TopScores(limit)
}

func (e *Engine) PlayerScore(playerID int64) (domain.ScoreRecord, bool) {
	return e.store.PlayerScore(playerID)
}

// Close cancels all tickers, finalizes any terminal sessions that still owe
// a score write and waits for the tick loops to drain.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	for id, cancel := range e.cancels {
		cancel()
		delete(e.cancels, id)
	}
	for _, s := range e.sessions {
		e.finalizeLocked(s)
	}
	e.mu.Unlock()

	e.cancel()
	done := make(chan struct{})
	go func() {
		_ = e.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runTicker applies gravity to one session at a fixed interval. After every
// sleep it re-checks that the session is still the registered one and not
// terminal, since it may have been replaced or quit while sleeping.
func (e *Engine) runTicker(ctx context.Context, playerID int64, s *session) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		view, changed, done := e.tickStep(playerID, s)
		if notify := e.notifier(); changed && notify != nil {
			notify(playerID, view)
		}
		if done {
			return
		}
	}
}

func (e *Engine) tickStep(playerID int64, s *session) (SessionView, bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, ok := e.sessions[playerID]
	if !ok || cur != s {
		return SessionView{}, false, true
	}
	if s.game.Over() {
		return e.viewOf(s), false, true
	}

	before := s.game.Snapshot()
	s.game.SoftDrop()
	after := s.game.Snapshot()

	done := s.game.Over()
	if done {
		e.finalizeLocked(s)
	}
	return e.viewOf(s), snapshotChanged(before, after), done
}

// finalizeLocked persists a terminal session's result once. The persisted
// flag is only set after the store write succeeds, so a failed write gets
// retried on the next finalization trigger.
func (e *Engine) finalizeLocked(s *session) {
	if !s.game.Over() || s.persisted || s.game.Score() <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.PersistTimeout)
	defer cancel()

	result := domain.GameResult{
		Player:          s.player,
		Score:           s.game.Score(),
		Lines:           s.game.Lines(),
		DurationSeconds: int(s.game.Elapsed().Seconds()),
	}
	if err := e.store.Record(ctx, result); err != nil {
		e.logger.Error().Err(err).
			Int64("user_id", s.player.ID).
			Str("session_id", s.id).
			Msg("failed to persist final score")
		return
	}
	s.persisted = true

	e.logger.Info().
		Int64("user_id", s.player.ID).
		Str("session_id", s.id).
		Int("score", result.Score).
		Int("lines", result.Lines).
		Int("duration_s", result.DurationSeconds).
		Msg("game over, score persisted")
}

func (e *Engine) notifier() func(playerID int64, view SessionView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notify
}

func (e *Engine) viewOf(s *session) SessionView {
	snap := s.game.Snapshot()
	return SessionView{
		SessionID:      s.id,
		GameOver:       snap.Over,
		Score:          snap.Score,
		Lines:          snap.Lines,
		ElapsedSeconds: int(snap.Elapsed.Seconds()),
		Grid:           snap.Grid,
	}
}

// snapshotChanged ignores elapsed time: only board, piece or counter
// movement warrants a display refresh.
func snapshotChanged(before, after game.Snapshot) bool {
	before.Elapsed, after.Elapsed = 0, 0
	return !reflect.DeepEqual(before, after)
}
