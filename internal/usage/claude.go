package usage

import (
	"sort"
	"strings"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

const (
	fiveHourSeconds = 18000
	sevenDaySeconds = 604800
	oneDaySeconds   = 86400
)

// claudeKnownWindows are the well-known top-level keys of the Claude
// usage payload, in preferred display order.
var claudeKnownWindows = []struct {
	key     string
	label   string
	seconds float64
}{
	{"five_hour", "5時間", fiveHourSeconds},
	{"seven_day", "7日間", sevenDaySeconds},
	{"seven_day_opus", "7日間 (Opus)", sevenDaySeconds},
	{"seven_day_sonnet", "7日間 (Sonnet)", sevenDaySeconds},
	{"seven_day_oauth_apps", "7日間 (OAuth Apps)", sevenDaySeconds},
	{"seven_day_cowork", "7日間 (Cowork)", sevenDaySeconds},
}

// ParseClaudeUsage converts a decoded Claude usage payload into usage
// windows. Known keys come first in preferred order; any remaining
// top-level key whose value is an object with a numeric utilization is
// surfaced after them, in sorted key order. The function never fails:
// a payload with no recognizable window yields the sentinel window.
func ParseClaudeUsage(data any) []models.UsageWindow {
	var windows []models.UsageWindow

	obj, ok := asObject(data)
	if !ok {
		return []models.UsageWindow{models.NewUnknownWindow()}
	}

	pushed := make(map[string]bool)
	for _, known := range claudeKnownWindows {
		block, ok := asObject(obj[known.key])
		if !ok {
			continue
		}
		util, ok := toNumber(block["utilization"])
		if !ok {
			continue
		}
		windows = append(windows, models.UsageWindow{
			Name:          known.label,
			Utilization:   util,
			ResetsAt:      block["resets_at"],
			WindowSeconds: known.seconds,
		})
		pushed[known.key] = true
	}

	extras := make([]string, 0, len(obj))
	for key := range obj {
		if !pushed[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)

	for _, key := range extras {
		block, ok := asObject(obj[key])
		if !ok {
			continue
		}
		util, ok := toNumber(block["utilization"])
		if !ok {
			continue
		}
		windows = append(windows, models.UsageWindow{
			Name:          strings.ReplaceAll(key, "_", " "),
			Utilization:   util,
			ResetsAt:      block["resets_at"],
			WindowSeconds: guessClaudeWindowSeconds(key),
		})
	}

	if len(windows) == 0 {
		windows = append(windows, models.NewUnknownWindow())
	}
	return windows
}

// guessClaudeWindowSeconds derives a window duration for keys outside
// the known set. Returns 0 when nothing can be inferred.
func guessClaudeWindowSeconds(key string) float64 {
	if strings.HasPrefix(key, "seven_day") {
		return sevenDaySeconds
	}
	if strings.Contains(key, "hour") {
		return fiveHourSeconds
	}
	return 0
}
