package domain

import "fmt"

// State is an immutable snapshot of a Game handed to renderers.
type State struct {
	History []Entry `json:"history"`
	Step    int     `json:"step"`
	Next    Cell    `json:"next"`
	Order   Order   `json:"order"`
}

// Current returns the viewed history entry.
func (s State) Current() Entry { return s.History[s.Step] }

// ViewCell is one square of the rendered grid.
type ViewCell struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Highlight bool   `json:"highlight"`
}

// MoveItem is one entry of the rendered move list.
type MoveItem struct {
	Step   int    `json:"step"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// View is everything a renderer needs to paint the game.
type View struct {
	Cells          [Size]ViewCell `json:"cells"`
	Outcome        Outcome        `json:"outcome"`
	Status         string         `json:"status"`
	MovesRemaining int            `json:"moves_remaining"`
	Moves          []MoveItem     `json:"moves"`
	Step           int            `json:"step"`
	Next           Cell           `json:"next"`
	Order          Order          `json:"order"`
}

// View derives the view of the viewed step.
func (s State) View() View {
	cur := s.Current()
	out := Evaluate(cur.Board)

	v := View{Outcome: out, Step: s.Step, Next: s.Next, Order: s.Order}
	if !out.Decided() {
		v.MovesRemaining = cur.Board.Empties()
	}

	switch {
	case out.Result == Win:
		v.Status = "Winner: " + out.Winner.String()
	case v.MovesRemaining == 0:
		v.Status = "Draw"
	default:
		v.Status = "Next player: " + s.Next.String()
	}

	for i, c := range cur.Board {
		v.Cells[i] = ViewCell{Index: i, Label: c.String()}
	}
	for _, i := range out.Line {
		v.Cells[i].Highlight = true
	}

	v.Moves = make([]MoveItem, len(s.History))
	for m, e := range s.History {
		item := MoveItem{Step: m, Label: MoveLabel(m, e), Active: m == s.Step}
		if s.Order == Descending {
			v.Moves[len(s.History)-1-m] = item
		} else {
			v.Moves[m] = item
		}
	}
	return v
}

// MoveLabel describes the history entry at step m.
func MoveLabel(m int, e Entry) string {
	if m == 0 || e.Changed == NoMove {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d (%d, %d)", m, e.Changed/3, e.Changed%3)
}
