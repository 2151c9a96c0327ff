// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// Color definitions for the monitor theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Vendor accents
	ClaudeAccent = lipgloss.Color("208") // Orange
	CodexAccent  = lipgloss.Color("39")  // Blue

	// Status colors
	OK        = lipgloss.Color("42")  // Green
	Warning   = lipgloss.Color("220") // Yellow
	Critical  = lipgloss.Color("202") // Orange-red
	Exhausted = lipgloss.Color("196") // Red
	ErrColor  = lipgloss.Color("196") // Red
	Unknown   = lipgloss.Color("240") // Gray

	// Background colors
	BgDark  = lipgloss.Color("235")
	BgLight = lipgloss.Color("237")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 2).
	MarginBottom(1)

// SelectedCardStyle highlights the selected account card.
var SelectedCardStyle = CardStyle.
	BorderForeground(Primary)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// LogTimeStyle styles the timestamps of activity-log lines.
var LogTimeStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(ErrColor)

// MutedTextStyle for secondary detail lines.
var MutedTextStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// statusColors maps an account status to its display color.
var statusColors = map[models.Status]lipgloss.Color{
	models.StatusOK:        OK,
	models.StatusWarning:   Warning,
	models.StatusCritical:  Critical,
	models.StatusExhausted: Exhausted,
	models.StatusError:     ErrColor,
	models.StatusUnknown:   Unknown,
}

// StatusColor returns the display color for a status.
func StatusColor(s models.Status) lipgloss.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return Unknown
}

// StatusStyle returns a foreground style for a status.
func StatusStyle(s models.Status) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(StatusColor(s))
	if s.IsDegraded() {
		style = style.Bold(true)
	}
	return style
}

// SeverityStyle returns a foreground style for a window severity.
func SeverityStyle(s models.Severity) lipgloss.Style {
	return StatusStyle(s.Status())
}

// VendorAccent returns the accent color for a vendor label.
func VendorAccent(v models.Vendor) lipgloss.Color {
	switch v {
	case models.VendorClaude:
		return ClaudeAccent
	case models.VendorCodex:
		return CodexAccent
	default:
		return Primary
	}
}

// LogLevelStyle returns a style for an activity-log level.
func LogLevelStyle(level string) lipgloss.Style {
	switch level {
	case "crit":
		return lipgloss.NewStyle().Foreground(Critical).Bold(true)
	case "warn":
		return lipgloss.NewStyle().Foreground(Warning)
	case "ok":
		return lipgloss.NewStyle().Foreground(OK)
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}
