// Package tui renders a game in the terminal using bubbletea.
//
// The model owns a *domain.Game and is only touched from the bubbletea
// event loop.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

// Model is the bubbletea model for a hot-seat game.
type Model struct {
	game     *domain.Game
	cursor   int
	width    int
	height   int
	quitting bool
}

// New returns a model around a fresh game with the cursor on the centre cell.
func New() Model {
	return Model{game: domain.New(), cursor: 4}
}

// State exposes the current snapshot, mainly for callers of tea.Program.Run.
func (m Model) State() domain.State { return m.game.State() }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor >= 3 {
				m.cursor -= 3
			}
		case "down", "j":
			if m.cursor < 6 {
				m.cursor += 3
			}
		case "left", "h":
			if m.cursor%3 > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor%3 < 2 {
				m.cursor++
			}

		case "enter", " ":
			m.game.Play(m.cursor)
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			cell := int(key[0] - '1')
			m.cursor = cell
			m.game.Play(cell)

		case "[":
			m.game.JumpTo(m.game.Step() - 1)
		case "]":
			m.game.JumpTo(m.game.Step() + 1)
		case "home", "0":
			m.game.JumpTo(0)
		case "end":
			m.game.JumpTo(m.game.Len() - 1)

		case "o":
			m.game.ToggleOrder()
		case "r":
			m.game.Reset()
		}
	}
	return m, nil
}
