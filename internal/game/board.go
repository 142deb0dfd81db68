package game

const (
	Width  = 7
	Height = 12
)

type Cell uint8

const (
	CellEmpty Cell = iota
	CellFilled
	// CellFalling marks the active piece's cells in snapshots. It never
	// appears inside a Board.
	CellFalling
)

// Board is the fixed 7x12 grid, row-major, origin top-left.
type Board [][]Cell

func NewBoard() Board {
	b := make(Board, Height)
	for r := range b {
		b[r] = make([]Cell, Width)
	}
	return b
}

// Collides reports whether the piece at the given anchor maps any occupied
// cell off the sides or bottom of the grid, or onto a filled cell. Rows
// above the grid are not out-of-bounds on their own, which lets pieces
// spawn partially hidden.
func (b Board) Collides(p *Piece, col, row int) bool {
	for r, cells := range p.Cells {
		for c, occupied := range cells {
			if !occupied {
				continue
			}
			bc, br := col+c, row+r
			if bc < 0 || bc >= Width || br >= Height {
				return true
			}
			if br >= 0 && b[br][bc] != CellEmpty {
				return true
			}
		}
	}
	return false
}

// Merge writes the piece's occupied cells into the board. Cells mapping
// outside the grid are ignored; a valid anchor never produces any.
func (b Board) Merge(p *Piece, col, row int) {
	for r, cells := range p.Cells {
		for c, occupied := range cells {
			if !occupied {
				continue
			}
			bc, br := col+c, row+r
			if bc >= 0 && bc < Width && br >= 0 && br < Height {
				b[br][bc] = CellFilled
			}
		}
	}
}

// ClearFullRows removes every fully filled row, keeps the remaining rows in
// order and tops the board up with empty rows so the height is unchanged.
func (b Board) ClearFullRows() (Board, int) {
	kept := make(Board, 0, Height)
	for _, row := range b {
		full := true
		for _, cell := range row {
			if cell == CellEmpty {
				full = false
				break
			}
		}
		if !full {
			kept = append(kept, row)
		}
	}
	cleared := Height - len(kept)
	if cleared == 0 {
		return b, 0
	}
	out := make(Board, 0, Height)
	for i := 0; i < cleared; i++ {
		out = append(out, make([]Cell, Width))
	}
	out = append(out, kept...)
	return out, cleared
}

func (b Board) clone() Board {
	out := make(Board, len(b))
	for r := range b {
		out[r] = make([]Cell, Width)
		copy(out[r], b[r])
	}
	return out
}
