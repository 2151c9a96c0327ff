package usage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// Notification is one user-facing alert produced by a status transition.
type Notification struct {
	Title string
	Body  string
}

// LogEntry is one activity-log line produced by a status transition.
// Level is one of "crit", "warn", "ok".
type LogEntry struct {
	Level   string
	Message string
}

// Effects are the externally observable side effects of one transition.
type Effects struct {
	Notifications []Notification
	Logs          []LogEntry
}

// BuildTransitionEffects computes the notification and log effects of a
// service status change. The first observation and an unchanged status
// produce nothing. Only four transitions are observable: entering
// critical/exhausted, entering warning from a non-degraded state,
// and recovering from critical/exhausted to ok. The recovery body never
// carries the recovery-duration hint; degradation bodies do, when a
// canonical window duration is present.
func BuildTransitionEffects(prev, next models.Status, label string, windows []models.UsageWindow, ns models.NotifySettings, now time.Time) Effects {
	if prev == models.StatusNone || prev == next {
		return Effects{}
	}

	var effects Effects

	switch {
	case next == models.StatusCritical || next == models.StatusExhausted:
		effects.Logs = append(effects.Logs, LogEntry{
			Level:   "crit",
			Message: fmt.Sprintf("%s → %s", label, next),
		})
		if ns.Critical {
			body := fmt.Sprintf("ステータス: %s — %s", next, windowDetail(windows, now))
			if hint := RecoveryHint(windows); hint != "" {
				body += "（" + hint + "）"
			}
			effects.Notifications = append(effects.Notifications, Notification{
				Title: label + " ⚠️",
				Body:  body,
			})
		}

	case next == models.StatusWarning && !prev.IsDegraded():
		effects.Logs = append(effects.Logs, LogEntry{
			Level:   "warn",
			Message: fmt.Sprintf("%s → %s", label, next),
		})
		if ns.Warning {
			body := fmt.Sprintf("ステータス: %s — %s", next, windowDetail(windows, now))
			if hint := RecoveryHint(windows); hint != "" {
				body += "（" + hint + "）"
			}
			effects.Notifications = append(effects.Notifications, Notification{
				Title: label + " ⚠",
				Body:  body,
			})
		}

	case next == models.StatusOK && prev.IsDegraded():
		effects.Logs = append(effects.Logs, LogEntry{
			Level:   "ok",
			Message: fmt.Sprintf("%s → ok (回復)", label),
		})
		if ns.Recovery {
			body := "クォータが回復しました"
			if detail := resetDetail(windows, now); detail != "" {
				body += " — " + detail
			}
			effects.Notifications = append(effects.Notifications, Notification{
				Title: label + " ✅",
				Body:  body,
			})
		}
	}

	return effects
}

// windowDetail renders the per-window utilization summary, with the
// time-to-reset phrase where one is resolvable.
func windowDetail(windows []models.UsageWindow, now time.Time) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		part := fmt.Sprintf("%s: %s%%", w.Name, formatPercent(w.Utilization))
		if phrase := FormatResetIn(w, now); phrase != "" {
			part += " (" + phrase + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// resetDetail renders only the reset-time phrases, for windows that
// have one.
func resetDetail(windows []models.UsageWindow, now time.Time) string {
	var parts []string
	for _, w := range windows {
		if phrase := FormatResetIn(w, now); phrase != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", w.Name, phrase))
		}
	}
	return strings.Join(parts, ", ")
}

// formatPercent renders a utilization value the way the vendor reported
// it, without a forced decimal point.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatResetIn renders the remaining time until the window resets:
// リセット済み when the instant has passed, あとD日H時間 at a day or
// more, あとH時間M分 at an hour or more, otherwise あとM分. Empty when
// the window has no resolvable reset instant.
func FormatResetIn(w models.UsageWindow, now time.Time) string {
	reset, ok := w.ResetTime()
	if !ok {
		return ""
	}
	diff := reset.Sub(now)
	if diff <= 0 {
		return "リセット済み"
	}
	hours := int(diff / time.Hour)
	minutes := int(diff/time.Minute) % 60
	switch {
	case hours >= 24:
		return fmt.Sprintf("あと%d日%d時間", hours/24, hours%24)
	case hours > 0:
		return fmt.Sprintf("あと%d時間%d分", hours, minutes)
	default:
		return fmt.Sprintf("あと%d分", minutes)
	}
}

// ElapsedPct reports how far through its duration a window is, derived
// from the reset instant and the window length, clamped to [0,100].
// The boolean is false when either input is missing or unparseable.
func ElapsedPct(w models.UsageWindow, now time.Time) (float64, bool) {
	if w.WindowSeconds <= 0 {
		return 0, false
	}
	reset, ok := w.ResetTime()
	if !ok {
		return 0, false
	}

	remain := reset.Sub(now).Seconds()
	if remain < 0 {
		remain = 0
	}
	pct := (w.WindowSeconds - remain) / w.WindowSeconds * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// FormatElapsedPct renders the window-progress phrase for the usage
// bar, empty when the progress cannot be derived.
func FormatElapsedPct(w models.UsageWindow, now time.Time) string {
	pct, ok := ElapsedPct(w, now)
	if !ok {
		return ""
	}
	return fmt.Sprintf("経過 %.0f%%", pct)
}

// RecoveryHint returns the advisory recovery phrase for the shortest
// known window duration among the affected windows. Only the canonical
// 5-hour and 7-day durations are recognized; anything else yields no
// hint.
func RecoveryHint(windows []models.UsageWindow) string {
	shortest := 0.0
	for _, w := range windows {
		if w.WindowSeconds <= 0 {
			continue
		}
		if shortest == 0 || w.WindowSeconds < shortest {
			shortest = w.WindowSeconds
		}
	}
	switch shortest {
	case fiveHourSeconds:
		return "次の使用から5時間後に回復します"
	case sevenDaySeconds:
		return "次の使用から7日後に回復します"
	default:
		return ""
	}
}
