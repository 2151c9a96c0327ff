package models

const (
	// HistoryMaxPoints caps the rolling utilization history per window.
	HistoryMaxPoints = 10
	// HistoryResetDropPct is the utilization drop, in percentage points,
	// treated as a quota reset.
	HistoryResetDropPct = 5.0
)

// RollingHistory keeps a short utilization series for one usage window,
// used only for sparkline rendering. A drop of HistoryResetDropPct or
// more since the last point clears the series instead of appending, so
// the sparkline restarts after a quota reset.
type RollingHistory struct {
	points []float64
}

// Record appends a utilization sample, applying the reset heuristic and
// the size cap.
func (h *RollingHistory) Record(utilization float64) {
	if n := len(h.points); n > 0 && utilization < h.points[n-1]-HistoryResetDropPct {
		h.points = h.points[:0]
	}
	h.points = append(h.points, utilization)
	if len(h.points) > HistoryMaxPoints {
		h.points = h.points[1:]
	}
}

// Points returns a copy of the recorded samples, oldest first.
func (h *RollingHistory) Points() []float64 {
	out := make([]float64, len(h.points))
	copy(out, h.points)
	return out
}

// Len returns the number of recorded samples.
func (h *RollingHistory) Len() int {
	return len(h.points)
}
