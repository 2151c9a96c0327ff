package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent periodically so reset countdowns stay current even
// between poll cycles.
type TickMsg struct {
	Time time.Time
}

// tickInterval is how often the view re-renders without new data.
const tickInterval = 15 * time.Second

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
