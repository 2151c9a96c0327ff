package models

import (
	"time"
)

// UnknownFormatName labels the synthetic window emitted when a vendor
// payload matches no known shape.
const UnknownFormatName = "(不明な形式)"

// UsageWindow is one rate-limit bucket reported by a vendor usage API.
type UsageWindow struct {
	Name        string  `json:"name"`
	Utilization float64 `json:"utilization"`
	// ResetsAt holds the vendor-reported reset instant as-is: epoch
	// seconds (float64) or an RFC 3339 string. Nil when unknown.
	ResetsAt any `json:"resetsAt,omitempty"`
	// WindowSeconds is the total window duration; 0 when not derivable.
	WindowSeconds  float64  `json:"windowSeconds,omitempty"`
	ForceExhausted bool     `json:"forceExhausted,omitempty"`
	Status         Severity `json:"status"`
}

// NewUnknownWindow returns the sentinel window for unparseable payloads.
func NewUnknownWindow() UsageWindow {
	return UsageWindow{
		Name:        UnknownFormatName,
		Utilization: 0,
		Status:      SeverityUnknown,
	}
}

// ResetTime resolves the vendor-reported reset instant, accepting epoch
// seconds or an RFC 3339 timestamp. Returns false when absent or
// unparseable.
func (w UsageWindow) ResetTime() (time.Time, bool) {
	switch v := w.ResetsAt.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// NotifySettings is the user-configurable notification policy. The
// thresholds are independent knobs clamped to [1,99] by the settings
// layer; the classifier applies them literally.
type NotifySettings struct {
	Critical          bool    `json:"critical"`
	Recovery          bool    `json:"recovery"`
	Warning           bool    `json:"warning"`
	ThresholdWarning  float64 `json:"thresholdWarning"`
	ThresholdCritical float64 `json:"thresholdCritical"`
}

// DefaultNotifySettings returns the default notification policy.
func DefaultNotifySettings() NotifySettings {
	return NotifySettings{
		Critical:          true,
		Recovery:          true,
		Warning:           false,
		ThresholdWarning:  75,
		ThresholdCritical: 90,
	}
}

// ServiceState is the latest poll result for one vendor account.
type ServiceState struct {
	Key       string        `json:"key"` // "<vendor>:<account id>"
	Label     string        `json:"label"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Windows   []UsageWindow `json:"windows"`
	FetchedAt time.Time     `json:"fetchedAt"`
}
