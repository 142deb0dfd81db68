package game

import (
	"testing"
)

func fillRow(b Board, row int, cols ...int) {
	if len(cols) == 0 {
		for c := 0; c < Width; c++ {
			b[row][c] = CellFilled
		}
		return
	}
	for _, c := range cols {
		b[row][c] = CellFilled
	}
}

func TestCollidesBounds(t *testing.T) {
	b := NewBoard()
	bar := NewPiece(ShapeBar)

	tests := []struct {
		name     string
		col, row int
		want     bool
	}{
		{"inside", 2, 5, false},
		{"left edge", 0, 5, false},
		{"right edge", Width - 3, 5, false},
		{"past left", -1, 5, true},
		{"past right", Width - 2, 5, true},
		{"bottom row", 0, Height - 1, false},
		{"below bottom", 0, Height, true},
		{"above top is allowed", 2, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Collides(bar, tt.col, tt.row); got != tt.want {
				t.Fatalf("Collides(bar, %d, %d) = %v, want %v", tt.col, tt.row, got, tt.want)
			}
		})
	}
}

func TestCollidesFilledCells(t *testing.T) {
	b := NewBoard()
	b[5][3] = CellFilled
	bar := NewPiece(ShapeBar)

	if !b.Collides(bar, 2, 5) {
		t.Fatal("bar overlapping a filled cell should collide")
	}
	if b.Collides(bar, 4, 5) {
		t.Fatal("bar next to a filled cell should not collide")
	}
	// overlap only counts once the cell row is on the board
	if b.Collides(bar, 2, -1) {
		t.Fatal("bar fully above the board should not collide")
	}
}

func TestMergeIgnoresOutOfGrid(t *testing.T) {
	b := NewBoard()
	vertical := NewPiece(ShapeBar).Rotated()

	b.Merge(vertical, 3, -1)

	if b[0][3] != CellFilled || b[1][3] != CellFilled {
		t.Fatal("visible cells of a partially hidden piece should merge")
	}
	for r := 2; r < Height; r++ {
		if b[r][3] != CellEmpty {
			t.Fatalf("row %d unexpectedly filled", r)
		}
	}
}

func TestClearFullRowsNoop(t *testing.T) {
	b := NewBoard()
	fillRow(b, 11, 0, 1, 2)
	fillRow(b, 10, 4)

	got, cleared := b.ClearFullRows()
	if cleared != 0 {
		t.Fatalf("cleared = %d, want 0", cleared)
	}
	if got[11][0] != CellFilled || got[10][4] != CellFilled {
		t.Fatal("board changed by a no-op clear")
	}
}

func TestClearFullRowsCompaction(t *testing.T) {
	b := NewBoard()
	fillRow(b, 11)          // full, goes away
	fillRow(b, 10, 0, 1)    // partial, shifts to the bottom
	fillRow(b, 9)           // full, goes away
	fillRow(b, 8, 6)        // partial, shifts down two

	got, cleared := b.ClearFullRows()
	if cleared != 2 {
		t.Fatalf("cleared = %d, want 2", cleared)
	}
	if len(got) != Height {
		t.Fatalf("height = %d, want %d", len(got), Height)
	}
	if got[11][0] != CellFilled || got[11][1] != CellFilled {
		t.Fatal("partial row above a cleared row should land on the bottom")
	}
	if got[10][6] != CellFilled {
		t.Fatal("relative order of surviving rows not preserved")
	}
	for r := 0; r < 10; r++ {
		for c := 0; c < Width; c++ {
			if got[r][c] != CellEmpty {
				t.Fatalf("cell (%d,%d) should be empty after compaction", r, c)
			}
		}
	}
}

func TestClearFullRowsAll(t *testing.T) {
	b := NewBoard()
	for r := 8; r < Height; r++ {
		fillRow(b, r)
	}
	got, cleared := b.ClearFullRows()
	if cleared != 4 {
		t.Fatalf("cleared = %d, want 4", cleared)
	}
	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if got[r][c] != CellEmpty {
				t.Fatalf("cell (%d,%d) not empty", r, c)
			}
		}
	}
}
