package domain

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String returns the mark shown on the board ("" for an empty cell).
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// MarshalText encodes a cell as its board label.
func (c Cell) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Size is the number of cells on a board.
const Size = len(Board{})

// Empties counts the cells nobody has played yet.
func (b Board) Empties() int {
	n := 0
	for _, c := range b {
		if c == Empty {
			n++
		}
	}
	return n
}

// Result classifies a board.
type Result uint8

const (
	InProgress Result = iota
	Win
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// MarshalText encodes the result as a lowercase word.
func (r Result) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Outcome is derived from a board and never stored.
// Line holds the three winning indices and is nil unless Result is Win.
type Outcome struct {
	Result Result `json:"result"`
	Winner Cell   `json:"winner"`
	Line   []int  `json:"line,omitempty"`
}

// Decided reports whether no further move can be made.
func (o Outcome) Decided() bool { return o.Result != InProgress }

var lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate returns the outcome of b. When several lines are complete the
// first one in row, column, diagonal order wins.
func Evaluate(b Board) Outcome {
	for _, ln := range lines {
		side := b[ln[0]]
		if side != Empty && b[ln[1]] == side && b[ln[2]] == side {
			return Outcome{Result: Win, Winner: side, Line: []int{ln[0], ln[1], ln[2]}}
		}
	}
	if b.Empties() == 0 {
		return Outcome{Result: Draw}
	}
	return Outcome{Result: InProgress}
}
