package game

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func newTestGame() *Game {
	return New(rand.New(rand.NewSource(1)))
}

func setPiece(g *Game, p *Piece, col, row int) {
	g.piece, g.col, g.row = p, col, row
}

func TestMoveBlockedByWallsAndCells(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar), 0, 5)

	g.MoveLeft()
	if g.col != 0 {
		t.Fatalf("col = %d, move into the wall should be rejected silently", g.col)
	}
	g.MoveRight()
	if g.col != 1 {
		t.Fatalf("col = %d, want 1", g.col)
	}

	g.board[5][5] = CellFilled
	g.MoveRight() // would occupy cols 2..4, fine
	g.MoveRight() // cols 3..5 overlaps the filled cell
	if g.col != 2 {
		t.Fatalf("col = %d, move into a filled cell should be rejected", g.col)
	}
}

func TestRotateBarPivotsAroundCenter(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar), 2, 5)

	g.Rotate()
	if g.piece.Horizontal() {
		t.Fatal("bar should be vertical after rotation")
	}
	if g.col != 3 || g.row != 4 {
		t.Fatalf("anchor = (%d,%d), want (3,4): pivot must be the bar's own center", g.col, g.row)
	}

	g.Rotate()
	if !g.piece.Horizontal() {
		t.Fatal("bar should be horizontal again")
	}
	if g.col != 2 || g.row != 5 {
		t.Fatalf("anchor = (%d,%d), want the original (2,5)", g.col, g.row)
	}
}

func TestRotateWallKick(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar).Rotated(), 0, 5) // vertical bar hugging the left wall

	g.Rotate()

	// recentering alone would anchor at column -1; the (1,0) kick saves it
	if !g.piece.Horizontal() {
		t.Fatal("rotation should succeed via a wall kick")
	}
	if g.col != 0 || g.row != 6 {
		t.Fatalf("anchor = (%d,%d), want (0,6)", g.col, g.row)
	}
}

func TestRotateAllKicksBlockedLeavesStateUntouched(t *testing.T) {
	g := newTestGame()
	// one-column well at col 3, everything else in rows 9-11 filled
	for r := 9; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if c != 3 {
				g.board[r][c] = CellFilled
			}
		}
	}
	setPiece(g, NewPiece(ShapeBar).Rotated(), 3, 9)

	beforePiece := g.piece
	beforeCells := make([][]bool, len(g.piece.Cells))
	copy(beforeCells, g.piece.Cells)

	g.Rotate()

	if g.piece != beforePiece || g.col != 3 || g.row != 9 {
		t.Fatal("rotation with no valid kick must leave piece and anchor unchanged")
	}
	if !reflect.DeepEqual(g.piece.Cells, beforeCells) {
		t.Fatal("rotation with no valid kick mutated the matrix")
	}
	if g.board.Collides(g.piece, g.col, g.row) {
		t.Fatal("rotation left the session colliding")
	}
}

func TestSoftDropMovesThenLands(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar), 0, Height-2)

	if !g.SoftDrop() {
		t.Fatal("drop into free space should report moved")
	}
	if g.row != Height-1 {
		t.Fatalf("row = %d, want %d", g.row, Height-1)
	}

	if g.SoftDrop() {
		t.Fatal("drop on the floor should report not moved")
	}
	for c := 0; c < 3; c++ {
		if g.board[Height-1][c] != CellFilled {
			t.Fatalf("cell (%d,%d) should be merged", Height-1, c)
		}
	}
	if g.score != 0 {
		t.Fatalf("score = %d, landing without a clear awards nothing", g.score)
	}
}

func TestHardDropScoring(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar), 2, 0)

	g.HardDrop()

	// 11 rows travelled at 2 points each, no clear
	if g.score != 22 {
		t.Fatalf("score = %d, want 22", g.score)
	}
	for c := 2; c < 5; c++ {
		if g.board[Height-1][c] != CellFilled {
			t.Fatalf("column %d of the bottom row should be filled", c)
		}
	}
}

func TestLandingScoreSuperlinear(t *testing.T) {
	tests := []struct {
		rows      int
		wantBonus int
	}{
		{1, 100},
		{2, 400},
		{3, 900},
	}
	for _, tt := range tests {
		g := newTestGame()
		// rows missing only column 6, completed by a vertical bar
		for r := Height - tt.rows; r < Height; r++ {
			fillRow(g.board, r, 0, 1, 2, 3, 4, 5)
		}
		setPiece(g, NewPiece(ShapeBar).Rotated(), 6, 0)

		g.HardDrop()

		travelled := Height - 3 // vertical bar is 3 tall
		want := travelled*2 + tt.wantBonus
		if g.score != want {
			t.Fatalf("clearing %d rows: score = %d, want %d", tt.rows, g.score, want)
		}
		if g.lines != tt.rows {
			t.Fatalf("lines = %d, want %d", g.lines, tt.rows)
		}
	}
}

func TestScenarioBottomRowClear(t *testing.T) {
	g := newTestGame()

	setPiece(g, NewPiece(ShapeBar), 0, Height-1)
	g.SoftDrop()
	for c := 0; c < 3; c++ {
		if g.board[Height-1][c] != CellFilled {
			t.Fatalf("first bar should fill exactly cells 0-2 of the bottom row")
		}
	}
	for c := 3; c < Width; c++ {
		if g.board[Height-1][c] != CellEmpty {
			t.Fatalf("cell (%d,%d) should still be empty", Height-1, c)
		}
	}

	setPiece(g, NewPiece(ShapeBar), 3, Height-1)
	g.SoftDrop()

	// vertical bar in the last column completes the row
	setPiece(g, NewPiece(ShapeBar).Rotated(), 6, Height-3)
	g.SoftDrop()

	if g.score != 100 || g.lines != 1 {
		t.Fatalf("score = %d, lines = %d, want 100 and 1", g.score, g.lines)
	}
	for c := 0; c < 6; c++ {
		if g.board[Height-1][c] != CellEmpty {
			t.Fatalf("cleared bottom row should be empty at col %d", c)
		}
	}
	// the two leftover cells of the vertical bar shifted down by one
	if g.board[Height-1][6] != CellFilled || g.board[Height-2][6] != CellFilled {
		t.Fatal("surviving cells above the cleared row should shift down")
	}
}

func TestTerminalOnBlockedSpawn(t *testing.T) {
	g := newTestGame()
	// block the spawn area so any fresh piece collides at its anchor
	fillRow(g.board, 0, 2, 3, 4)
	fillRow(g.board, 1, 2, 3, 4)
	setPiece(g, NewPiece(ShapeCorner), 0, Height-2)

	g.SoftDrop()

	if !g.over {
		t.Fatal("session must become terminal when the next spawn collides")
	}
}

func TestOperationsNoopWhenOver(t *testing.T) {
	g := newTestGame()
	setPiece(g, NewPiece(ShapeBar), 2, 3)
	g.ForceQuit()

	before := g.Snapshot()
	g.MoveLeft()
	g.MoveRight()
	g.Rotate()
	g.HardDrop()
	if g.SoftDrop() {
		t.Fatal("soft drop on a terminal session must report not moved")
	}
	after := g.Snapshot()

	before.Elapsed, after.Elapsed = 0, 0
	if !reflect.DeepEqual(before, after) {
		t.Fatal("operations on a terminal session must not change state")
	}
}

func TestElapsedComputedAtReadTime(t *testing.T) {
	g := newTestGame()
	base := time.Unix(1000, 0)
	g.startedAt = base
	current := base
	g.now = func() time.Time { return current }

	g.ForceQuit()
	current = base.Add(90 * time.Second)

	if got := g.Elapsed(); got != 90*time.Second {
		t.Fatalf("elapsed = %s, must be computed against the clock at read time", got)
	}
}

func TestSnapshotOverlaysFallingPiece(t *testing.T) {
	g := newTestGame()
	g.board[11][0] = CellFilled
	setPiece(g, NewPiece(ShapeCorner), 3, 2)

	snap := g.Snapshot()

	if snap.Grid[2][3] != CellFalling || snap.Grid[2][4] != CellFalling || snap.Grid[3][3] != CellFalling {
		t.Fatal("active piece cells should be marked falling")
	}
	if snap.Grid[3][4] != CellEmpty {
		t.Fatal("the corner gap must stay empty")
	}
	if snap.Grid[11][0] != CellFilled {
		t.Fatal("merged cells should render as filled")
	}
	if g.board[2][3] != CellEmpty {
		t.Fatal("snapshot must not write into the live board")
	}
}
