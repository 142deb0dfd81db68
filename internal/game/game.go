package game

import (
	"math/rand"
	"time"
)

const (
	hardDropPointsPerRow = 2
	lineClearBase        = 100
)

// Game is one player's complete game-in-progress: a board, the active piece
// with its anchor, and the score counters. All operations are no-ops once
// the game is over.
type Game struct {
	board     Board
	piece     *Piece
	col, row  int
	score     int
	lines     int
	startedAt time.Time
	over      bool
	rng       *rand.Rand
	now       func() time.Time
}

// Snapshot is a point-in-time description of a game, with the active
// piece's cells overlaid on the grid as CellFalling.
type Snapshot struct {
	Over    bool
	Score   int
	Lines   int
	Elapsed time.Duration
	Grid    [][]Cell
}

func New(rng *rand.Rand) *Game {
	g := &Game{
		board: NewBoard(),
		rng:   rng,
		now:   time.Now,
	}
	g.startedAt = g.now()
	g.piece, g.col, g.row = Spawn(g.rng)
	return g
}

func (g *Game) Over() bool { return g.over }
func (g *Game) Score() int { return g.score }
func (g *Game) Lines() int { return g.lines }

// Elapsed is computed against the wall clock at read time, also for
// finished games.
func (g *Game) Elapsed() time.Duration { return g.now().Sub(g.startedAt) }

func (g *Game) MoveLeft() {
	if !g.over && !g.board.Collides(g.piece, g.col-1, g.row) {
		g.col--
	}
}

func (g *Game) MoveRight() {
	if !g.over && !g.board.Collides(g.piece, g.col+1, g.row) {
		g.col++
	}
}

// Rotate turns the active piece clockwise, recentering per its shape and
// trying the shape's wall-kick offsets in order. If no candidate placement
// fits, piece and anchor are left untouched.
func (g *Game) Rotate() {
	if g.over {
		return
	}
	rotated := g.piece.Rotated()
	shift := g.piece.RecenterOffset()
	for _, kick := range g.piece.KickOffsets() {
		col := g.col + shift.Col + kick.Col
		row := g.row + shift.Row + kick.Row
		if !g.board.Collides(rotated, col, row) {
			g.piece, g.col, g.row = rotated, col, row
			return
		}
	}
}

// SoftDrop moves the piece one row down and reports true, or lands it and
// reports false.
func (g *Game) SoftDrop() bool {
	if g.over {
		return false
	}
	if !g.board.Collides(g.piece, g.col, g.row+1) {
		g.row++
		return true
	}
	g.land()
	return false
}

// HardDrop sends the piece straight down, awarding 2 points per row
// travelled, then lands it.
func (g *Game) HardDrop() {
	if g.over {
		return
	}
	for !g.board.Collides(g.piece, g.col, g.row+1) {
		g.row++
		g.score += hardDropPointsPerRow
	}
	g.land()
}

// ForceQuit ends the game regardless of board state.
func (g *Game) ForceQuit() {
	g.over = true
}

// land merges the active piece, clears full rows, scores the clear
// superlinearly and spawns the next piece. The game is over iff the fresh
// piece collides at its spawn anchor.
func (g *Game) land() {
	g.board.Merge(g.piece, g.col, g.row)
	var cleared int
	g.board, cleared = g.board.ClearFullRows()
	g.score += cleared * cleared * lineClearBase
	g.lines += cleared
	g.piece, g.col, g.row = Spawn(g.rng)
	if g.board.Collides(g.piece, g.col, g.row) {
		g.over = true
	}
}

func (g *Game) Snapshot() Snapshot {
	grid := g.board.clone()
	if !g.over {
		for r, cells := range g.piece.Cells {
			for c, occupied := range cells {
				if !occupied {
					continue
				}
				bc, br := g.col+c, g.row+r
				if bc >= 0 && bc < Width && br >= 0 && br < Height {
					grid[br][bc] = CellFalling
				}
			}
		}
	}
	return Snapshot{
		Over:    g.over,
		Score:   g.score,
		Lines:   g.lines,
		Elapsed: g.Elapsed(),
		Grid:    grid,
	}
}
