package usage

import (
	"fmt"
	"math"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// ParseCodexUsage converts a decoded Codex usage payload into usage
// windows. The primary shape is the wham rate_limit object with
// primary/secondary sub-windows, an optional code-review block and
// optional additional blocks; three legacy shapes are tried in order
// when the primary shape yields nothing. Never fails: a payload with no
// recognizable window yields the sentinel window.
func ParseCodexUsage(data any) []models.UsageWindow {
	var windows []models.UsageWindow

	obj, ok := asObject(data)
	if !ok {
		return []models.UsageWindow{models.NewUnknownWindow()}
	}

	parseWhamRateLimit(obj["rate_limit"], "", &windows)
	parseWhamRateLimit(obj["code_review_rate_limit"], "Code Review", &windows)

	if additional, ok := obj["additional_rate_limits"]; ok {
		if arr, ok := additional.([]any); ok {
			for idx, block := range arr {
				label := fmt.Sprintf("Additional %d", idx+1)
				if blockObj, ok := asObject(block); ok {
					if name, ok := getString(blockObj, "name"); ok {
						label = name
					}
				}
				parseWhamRateLimit(block, label, &windows)
			}
		} else {
			parseWhamRateLimit(additional, "Additional", &windows)
		}
	}

	// Legacy shape: a primary/secondary pair under rate_limits (or at
	// the top level).
	if len(windows) == 0 {
		fallback := obj
		if rl, ok := asObject(obj["rate_limits"]); ok {
			fallback = rl
		} else if rl, ok := asObject(obj["rateLimits"]); ok {
			fallback = rl
		}
		_, hasPrimary := fallback["primary"]
		_, hasSecondary := fallback["secondary"]
		if hasPrimary || hasSecondary {
			pushCodexWindow(fallback["primary"], "5時間", fallback, &windows)
			pushCodexWindow(fallback["secondary"], "7日間", fallback, &windows)
		}
	}

	// Legacy shape: an array of window-like objects.
	if len(windows) == 0 {
		for _, key := range []string{"windows", "limits", "rate_limits"} {
			arr, ok := obj[key].([]any)
			if !ok {
				continue
			}
			for _, item := range arr {
				var label string
				if itemObj, ok := asObject(item); ok {
					label, _ = getString(itemObj, "name", "label", "window")
				}
				pushCodexWindow(item, label, nil, &windows)
			}
			if len(windows) > 0 {
				break
			}
		}
	}

	// Legacy shape: named single-window keys.
	if len(windows) == 0 {
		for _, named := range []struct{ key, label string }{
			{"five_hour", "5時間"},
			{"fiveHour", "5時間"},
			{"weekly", "7日間"},
			{"seven_day", "7日間"},
		} {
			if block, ok := obj[named.key]; ok {
				pushCodexWindow(block, named.label, block, &windows)
			}
		}
	}

	if len(windows) == 0 {
		windows = append(windows, models.NewUnknownWindow())
	}
	return windows
}

// parseWhamRateLimit emits the primary and secondary sub-windows of one
// rate-limit block. The block itself is the fallback source for the
// limit_reached/allowed flags.
func parseWhamRateLimit(block any, prefix string, windows *[]models.UsageWindow) {
	obj, ok := asObject(block)
	if !ok {
		return
	}

	if primary, ok := getAny(obj, "primary_window", "primaryWindow", "primary"); ok {
		label := ""
		if prefix != "" {
			label = prefix + " (primary)"
		}
		pushCodexWindow(primary, label, block, windows)
	}
	if secondary, ok := getAny(obj, "secondary_window", "secondaryWindow", "secondary"); ok {
		label := ""
		if prefix != "" {
			label = prefix + " (secondary)"
		}
		pushCodexWindow(secondary, label, block, windows)
	}
}

// pushCodexWindow appends one window parsed from a sub-object.
// Utilization prefers used_percent, falling back to used/limit; the
// vendor's limit_reached/allowed flags (own or parent's) force the
// exhausted state regardless of the number.
func pushCodexWindow(windowData any, label string, parent any, windows *[]models.UsageWindow) {
	obj, ok := asObject(windowData)
	if !ok {
		return
	}

	utilization, ok := getNumber(obj, "used_percent", "usedPercent", "utilization")
	if !ok {
		used, usedOK := getNumber(obj, "used")
		limit, limitOK := getNumber(obj, "limit")
		if usedOK && limitOK && limit > 0 {
			utilization = used / limit * 100
		}
	}

	limitReached, hasLimitReached := getBool(obj, "limit_reached", "limitReached")
	allowed, hasAllowed := getBool(obj, "allowed")
	if parentObj, ok := asObject(parent); ok {
		if !hasLimitReached {
			limitReached, hasLimitReached = getBool(parentObj, "limit_reached", "limitReached")
		}
		if !hasAllowed {
			allowed, hasAllowed = getBool(parentObj, "allowed")
		}
	}
	forceExhausted := (hasLimitReached && limitReached) || (hasAllowed && !allowed)

	windowSeconds, _ := getNumber(obj, "limit_window_seconds", "limitWindowSeconds")
	resetsAt, _ := getAny(obj, "reset_at", "resetAt", "resets_at", "resetsAt")

	*windows = append(*windows, models.UsageWindow{
		Name:           normalizeWindowName(windowSeconds, label),
		Utilization:    utilization,
		ResetsAt:       resetsAt,
		WindowSeconds:  windowSeconds,
		ForceExhausted: forceExhausted,
	})
}

// normalizeWindowName derives a display name from the window duration
// when the caller supplied no label. Canonical durations get fixed
// names; other durations fall back to a rounded day or hour count.
func normalizeWindowName(seconds float64, fallback string) string {
	if fallback != "" {
		return fallback
	}
	switch {
	case math.Abs(seconds-fiveHourSeconds) < 1:
		return "5時間"
	case math.Abs(seconds-sevenDaySeconds) < 1:
		return "7日間"
	case math.Abs(seconds-oneDaySeconds) < 1:
		return "24時間"
	case seconds <= 0:
		return "ウィンドウ"
	case math.Mod(seconds, oneDaySeconds) < 1:
		return fmt.Sprintf("%d日間", int64(math.Round(seconds/oneDaySeconds)))
	default:
		return fmt.Sprintf("%d時間", int64(math.Round(seconds/3600)))
	}
}
