package game

import "math/rand"

type Shape int

const (
	ShapeBar Shape = iota
	ShapeCorner
)

// Offset is a (column, row) nudge applied to a piece anchor.
type Offset struct {
	Col int
	Row int
}

// Piece is a shape identifier plus its current occupancy matrix.
// Rotation returns a new piece; the matrix is never mutated in place.
type Piece struct {
	Shape Shape
	Cells [][]bool
}

type shapeDef struct {
	name  string
	cells [][]bool
	// recenter returns the anchor shift that keeps the piece visually
	// pivoting around its own center when rotated from the current
	// orientation.
	recenter func(p *Piece) Offset
	// kicks returns the ordered wall-kick offsets to try after recentering.
	// The first non-colliding candidate wins.
	kicks func(p *Piece) []Offset
}

var noShift = func(p *Piece) Offset { return Offset{} }

var shapeDefs = map[Shape]shapeDef{
	ShapeBar: {
		name:  "bar",
		cells: [][]bool{{true, true, true}},
		recenter: func(p *Piece) Offset {
			if p.Horizontal() {
				return Offset{Col: 1, Row: -1}
			}
			return Offset{Col: -1, Row: 1}
		},
		kicks: func(p *Piece) []Offset {
			if p.Horizontal() {
				return []Offset{{0, 0}, {0, 1}, {-1, 0}, {1, 0}}
			}
			return []Offset{{0, 0}, {-1, 0}, {1, 0}, {0, -1}}
		},
	},
	ShapeCorner: {
		name: "corner",
		cells: [][]bool{
			{true, true},
			{true, false},
		},
		recenter: noShift,
		kicks: func(p *Piece) []Offset {
			return []Offset{{0, 0}, {-1, 0}, {1, 0}, {0, -1}}
		},
	},
}

var catalogue = []Shape{ShapeBar, ShapeCorner}

func NewPiece(shape Shape) *Piece {
	base := shapeDefs[shape].cells
	cells := make([][]bool, len(base))
	for r := range base {
		cells[r] = make([]bool, len(base[r]))
		copy(cells[r], base[r])
	}
	return &Piece{Shape: shape, Cells: cells}
}

func (p *Piece) Width() int  { return len(p.Cells[0]) }
func (p *Piece) Height() int { return len(p.Cells) }

// Horizontal reports whether the piece is wider than tall. Only meaningful
// for the bar, whose kick table depends on orientation.
func (p *Piece) Horizontal() bool { return p.Width() > p.Height() }

// Rotated returns the piece turned 90 degrees clockwise: reverse the row
// order, then transpose.
func (p *Piece) Rotated() *Piece {
	rows, cols := p.Height(), p.Width()
	out := make([][]bool, cols)
	for r := range out {
		out[r] = make([]bool, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c][rows-1-r] = p.Cells[r][c]
		}
	}
	return &Piece{Shape: p.Shape, Cells: out}
}

// RecenterOffset is the anchor shift implied by rotating the piece from its
// current orientation.
func (p *Piece) RecenterOffset() Offset {
	return shapeDefs[p.Shape].recenter(p)
}

// KickOffsets is the ordered list of wall-kick candidates for a rotation
// from the current orientation. The offsets are load-bearing: callers must
// try them in order and commit the first fit.
func (p *Piece) KickOffsets() []Offset {
	return shapeDefs[p.Shape].kicks(p)
}

// Spawn picks a shape uniformly at random, applies 0-3 random rotations and
// anchors it horizontally centered at the top of the board.
func Spawn(rng *rand.Rand) (*Piece, int, int) {
	p := NewPiece(catalogue[rng.Intn(len(catalogue))])
	for i := rng.Intn(4); i > 0; i-- {
		p = p.Rotated()
	}
	col := Width/2 - p.Width()/2
	return p, col, 0
}
