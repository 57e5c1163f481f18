package domain

// NoMove marks the initial history entry, which has no changed cell.
const NoMove = -1

// Entry is one board snapshot in the history. Entries are never mutated
// after they are appended.
type Entry struct {
	Board   Board `json:"board"`
	Changed int   `json:"changed"`
}

// Order controls how the move list is displayed.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// MarshalText encodes the order as a lowercase word.
func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Game is the time-travel state machine: an ordered list of board
// snapshots, the step currently viewed and the move list order.
// A Game is not safe for concurrent use.
type Game struct {
	history []Entry
	step    int
	order   Order
}

// New returns a new game with X to move.
func New() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// Reset discards the whole history and restores the ascending order.
func (g *Game) Reset() {
	g.history = []Entry{{Changed: NoMove}}
	g.step = 0
	g.order = Ascending
}

// Next returns the player to move at the viewed step.
func (g *Game) Next() Cell { return nextFor(g.step) }

// Step returns the index of the viewed history entry.
func (g *Game) Step() int { return g.step }

// Len returns the number of history entries, including the initial one.
func (g *Game) Len() int { return len(g.history) }

// Order returns the move list order.
func (g *Game) Order() Order { return g.order }

// Current returns the viewed history entry.
func (g *Game) Current() Entry { return g.history[g.step] }

// Play places the next player's mark at index. It reports false and leaves
// the game untouched when the viewed board is already decided, the index is
// off the board or the cell is taken. A successful move drops every entry
// after the viewed step before appending.
func (g *Game) Play(index int) bool {
	if index < 0 || index >= Size {
		return false
	}
	cur := g.history[g.step]
	if cur.Board[index] != Empty || Evaluate(cur.Board).Decided() {
		return false
	}

	board := cur.Board
	board[index] = g.Next()

	// clip so the append never writes into storage a snapshot may share
	hist := g.history[: g.step+1 : g.step+1]
	g.history = append(hist, Entry{Board: board, Changed: index})
	g.step = len(g.history) - 1
	return true
}

// JumpTo views the given step. Later entries are kept until the next Play.
func (g *Game) JumpTo(step int) bool {
	if step < 0 || step >= len(g.history) {
		return false
	}
	g.step = step
	return true
}

// ToggleOrder flips the move list between ascending and descending.
func (g *Game) ToggleOrder() {
	if g.order == Ascending {
		g.order = Descending
	} else {
		g.order = Ascending
	}
}

// State returns an independent snapshot of the game.
func (g *Game) State() State {
	hist := make([]Entry, len(g.history))
	copy(hist, g.history)
	return State{History: hist, Step: g.step, Next: g.Next(), Order: g.order}
}

func nextFor(step int) Cell {
	if step%2 == 0 {
		return X
	}
	return O
}
