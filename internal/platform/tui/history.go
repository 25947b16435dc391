package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pminvaders/internal/storage"
)

// Session table column widths.
const (
	rankWidth  = 6
	scoreWidth = 8
	ticksWidth = 12
	dateWidth  = 18
	minPoolCol = 12
	maxPoolCol = 40
)

// RenderHistory renders recorded sessions as a static table sized for a
// terminal of the given width.
func RenderHistory(sessions []storage.Session, width int) string {
	poolWidth := width - rankWidth - 2*scoreWidth - ticksWidth - dateWidth - 12
	poolWidth = max(minPoolCol, min(poolWidth, maxPoolCol))

	columns := []table.Column{
		{Title: "Rank", Width: rankWidth},
		{Title: "Score", Width: scoreWidth},
		{Title: "Best", Width: scoreWidth},
		{Title: "Ticks", Width: ticksWidth},
		{Title: "Ended", Width: dateWidth},
		{Title: "Pool", Width: poolWidth},
	}

	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.HighScore),
			fmt.Sprintf("%d", s.Ticks),
			s.EndedAt.Local().Format("Jan 02 15:04"),
			shortenPath(s.PoolPath, poolWidth),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// Nothing is focused in a printed table.
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(t.View())
}

// shortenPath keeps the file name and as much of its directory as fits.
func shortenPath(path string, width int) string {
	r := []rune(path)
	if len(r) <= width {
		return path
	}
	base := filepath.Base(path)
	if len([]rune(base))+2 > width {
		return string([]rune(base)[:width-1]) + "…"
	}
	return "…" + string(r[len(r)-width+1:])
}
