package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	cellStyle = lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center).
		Border(lipgloss.NormalBorder())

	cursorStyle = cellStyle.BorderForeground(lipgloss.Color("39"))

	winStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().Bold(true)

	activeMoveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.game.State().View()

	board := m.renderBoard(v)
	info := renderInfo(v)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Tic-tac-toe"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, board, "   ", info))
	b.WriteString("\n\n")
	b.WriteString(renderFooter())
	b.WriteString("\n")

	// width/height stay zero until the first WindowSizeMsg
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
	}
	return b.String()
}

func (m Model) renderBoard(v domain.View) string {
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			vc := v.Cells[r*3+c]
			label := vc.Label
			if label == "" {
				label = " "
			}
			if vc.Highlight {
				label = winStyle.Render(label)
			}
			style := cellStyle
			if vc.Index == m.cursor {
				style = cursorStyle
			}
			cells = append(cells, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderInfo(v domain.View) string {
	var b strings.Builder
	b.WriteString(statusStyle.Render(v.Status))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Moves left: %d", v.MovesRemaining))
	b.WriteString("\n\n")
	for _, mv := range v.Moves {
		line := fmt.Sprintf("%2d. %s", mv.Step, mv.Label)
		if mv.Active {
			b.WriteString(activeMoveStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("order: " + v.Order.String()))
	return b.String()
}

func renderFooter() string {
	keys := []string{
		"[←↑↓→] Move", "[Enter] Play", "[1-9] Cell",
		"[[/]] Step", "[0] Start", "[O] Order", "[R] Reset", "[Q] Quit",
	}
	return mutedStyle.Render(strings.Join(keys, "  "))
}
