// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/ui/styles"
)

// RenderBar renders just the bar characters, colored by severity.
func RenderBar(percent float64, severity models.Severity, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	fillStyle := styles.SeverityStyle(severity)
	emptyStyle := lipgloss.NewStyle().Foreground(styles.Subtle)

	var b strings.Builder
	b.WriteString(fillStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String()
}

// UsageBar renders one usage window as a labeled bar with the
// utilization percentage and the optional elapsed-progress and reset
// phrases.
func UsageBar(w models.UsageWindow, resetPhrase, elapsedPhrase string, width int) string {
	const percentWidth = 6

	labelWidth := lipgloss.Width(w.Name) + 1
	barWidth := width - labelWidth - percentWidth - 4
	if barWidth < 5 {
		barWidth = 5
	}

	labelStr := styles.MutedTextStyle.Render(w.Name)
	bar := RenderBar(w.Utilization, w.Status, barWidth)
	percentStr := styles.SeverityStyle(w.Status).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", w.Utilization))

	line := fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
	if elapsedPhrase != "" {
		line += " " + styles.HelpStyle.Render("/ "+elapsedPhrase)
	}
	if resetPhrase != "" {
		line += " " + styles.HelpStyle.Render(resetPhrase)
	}
	return line
}

// StatusBadge renders the account status as a short colored tag.
func StatusBadge(s models.Status) string {
	text := string(s)
	if s == models.StatusNone {
		text = "…"
	}
	return styles.StatusStyle(s).Render(text)
}
