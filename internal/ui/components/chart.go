// Package components provides reusable UI components for the TUI.
package components

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/ui/styles"
)

// RenderUtilizationChart creates an ASCII line chart of one window's
// recent utilization samples.
func RenderUtilizationChart(data []float64, width, height int, caption string) string {
	if len(data) < 2 {
		return styles.HelpStyle.Render("データ不足")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// sparkChars are the block characters for sparklines, low to high.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline. Utilization is
// rendered on a fixed 0-100 scale so sparklines compare across windows.
func RenderSparkline(values []float64, severity models.Severity) string {
	if len(values) == 0 {
		return ""
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / 100 * float64(len(sparkChars)-1))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(sparkChars[idx])
	}

	return styles.SeverityStyle(severity).Render(b.String())
}
