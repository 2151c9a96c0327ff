package usage

import (
	"math"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// ExhaustedThreshold is the utilization at which a window counts as
// exhausted regardless of the configured thresholds.
const ExhaustedThreshold = 100.0

// Classify maps a utilization percentage to a severity using the
// caller's thresholds. The comparisons are applied literally in the
// order exhausted, critical, warning; an inverted configuration
// (warning above critical) silently makes warning unreachable.
// Non-finite input classifies as ok.
func Classify(utilization float64, ns models.NotifySettings) models.Severity {
	if math.IsNaN(utilization) || math.IsInf(utilization, 0) {
		return models.SeverityOK
	}
	switch {
	case utilization >= ExhaustedThreshold:
		return models.SeverityExhausted
	case utilization >= ns.ThresholdCritical:
		return models.SeverityCritical
	case utilization >= ns.ThresholdWarning:
		return models.SeverityWarning
	default:
		return models.SeverityOK
	}
}

// ClassifyWindows assigns a severity to every window. A vendor-asserted
// forceExhausted wins over the numeric classification. The input slice
// is updated in place and returned for convenience.
func ClassifyWindows(windows []models.UsageWindow, ns models.NotifySettings) []models.UsageWindow {
	for i := range windows {
		if windows[i].ForceExhausted {
			windows[i].Status = models.SeverityExhausted
			continue
		}
		windows[i].Status = Classify(windows[i].Utilization, ns)
	}
	return windows
}

// DeriveServiceStatus folds the window severities into the account's
// worst-case severity. An empty window list yields ok: that is the
// defined "no data yet" aggregation result, distinct from the
// parse-time sentinel.
func DeriveServiceStatus(windows []models.UsageWindow) models.Severity {
	if len(windows) == 0 {
		return models.SeverityOK
	}
	status := windows[0].Status
	for _, w := range windows[1:] {
		if w.Status > status {
			status = w.Status
		}
	}
	return status
}
