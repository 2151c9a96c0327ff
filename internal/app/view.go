package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/ui/components"
	"github.com/t-ishigaki/quota-monitor-tui/internal/ui/styles"
	"github.com/t-ishigaki/quota-monitor-tui/internal/usage"
)

// maxCardWidth keeps cards readable on very wide terminals.
const maxCardWidth = 76

// footerLogLines is how many activity-log lines the footer shows.
const footerLogLines = 6

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if len(m.order) == 0 {
		if m.polled {
			b.WriteString(styles.HelpStyle.Render("アカウントが登録されていません"))
		} else {
			b.WriteString(fmt.Sprintf("%s 使用状況を取得中...", m.spinner.View()))
		}
		b.WriteString("\n")
	} else {
		for i, key := range m.order {
			b.WriteString(m.renderCard(i, m.states[key]))
			b.WriteString("\n")
		}
	}

	if m.showHelp {
		b.WriteString(m.renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.renderLogFooter())
	b.WriteString(m.renderHelpLine())

	return b.String()
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Quota Monitor")
	if m.lastCycle.IsZero() {
		return title
	}
	stamp := styles.HelpStyle.Render("最終更新 " + m.lastCycle.Format("15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", stamp)
}

func (m *Model) cardWidth() int {
	w := m.width - 2
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) renderCard(index int, state models.ServiceState) string {
	selected := index == m.selected
	width := m.cardWidth()
	inner := width - 6

	var lines []string
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.CardTitleStyle.Render(state.Label),
		" ",
		components.StatusBadge(state.Status),
	)
	lines = append(lines, header)

	if state.Status == models.StatusError {
		lines = append(lines, styles.ErrorTextStyle.Render(state.Error))
	} else {
		now := m.now()
		for _, w := range state.Windows {
			bar := components.UsageBar(w, usage.FormatResetIn(w, now), usage.FormatElapsedPct(w, now), inner)
			if spark := components.RenderSparkline(m.history(state.Key, w.Name), w.Status); spark != "" {
				bar = lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", spark)
			}
			lines = append(lines, bar)
		}
	}

	if selected {
		lines = append(lines, m.renderDetailChart(state, inner))
	}

	style := styles.CardStyle
	if selected {
		style = styles.SelectedCardStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailChart plots the recent utilization of the selected
// account's first window with enough samples.
func (m *Model) renderDetailChart(state models.ServiceState, width int) string {
	for _, w := range state.Windows {
		hist := m.history(state.Key, w.Name)
		if len(hist) < 2 {
			continue
		}
		return "\n" + components.RenderUtilizationChart(hist, width-8, 5, w.Name)
	}
	return styles.HelpStyle.Render("データ不足")
}

func (m *Model) renderLogFooter() string {
	if len(m.logs) == 0 {
		return ""
	}

	start := len(m.logs) - footerLogLines
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	b.WriteString(styles.MutedTextStyle.Render("アクティビティ"))
	b.WriteString("\n")
	for _, line := range m.logs[start:] {
		b.WriteString(styles.LogTimeStyle.Render(line.Time.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(styles.LogLevelStyle(line.Level).Render(line.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderHelpLine() string {
	bindings := []struct{ key, desc string }{
		{"↑/k ↓/j", "選択"},
		{"r", "更新"},
		{"?", "ヘルプ"},
		{"q", "終了"},
	}

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts,
			styles.HelpKeyStyle.Render(kb.key)+" "+styles.HelpStyle.Render(kb.desc))
	}
	return strings.Join(parts, styles.HelpStyle.Render(" • "))
}

func (m *Model) renderHelpPanel() string {
	lines := []string{
		styles.CardTitleStyle.Render("キーボード操作"),
		"",
		"  ↑/k, ↓/j   アカウントを選択",
		"  r          すべてのアカウントを再取得",
		"  ?          このヘルプを開閉",
		"  q, Ctrl+C  終了",
	}
	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}
