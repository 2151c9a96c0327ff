// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
)

// Severity classifies a single usage window. The constant order is the
// tie-break order used when folding windows into a service status:
// unknown < ok < warning < critical < exhausted.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityOK
	SeverityWarning
	SeverityCritical
	SeverityExhausted
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its wire name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its wire name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity: %q", name)
	}
	*s = sev
	return nil
}

// ParseSeverity converts a wire name back to a Severity.
func ParseSeverity(name string) (Severity, bool) {
	switch name {
	case "unknown":
		return SeverityUnknown, true
	case "ok":
		return SeverityOK, true
	case "warning":
		return SeverityWarning, true
	case "critical":
		return SeverityCritical, true
	case "exhausted":
		return SeverityExhausted, true
	default:
		return SeverityUnknown, false
	}
}

// Status returns the account-level status value for this severity.
func (s Severity) Status() Status {
	return Status(s.String())
}

// Status is the lifecycle status of one polled account: a severity name,
// "error" when the fetch or parse failed, or empty before the first poll.
// Unlike Severity it is not ordered; "error" sits outside the severity
// scale entirely.
type Status string

const (
	StatusNone      Status = ""
	StatusUnknown   Status = "unknown"
	StatusOK        Status = "ok"
	StatusWarning   Status = "warning"
	StatusCritical  Status = "critical"
	StatusExhausted Status = "exhausted"
	StatusError     Status = "error"
)

// IsDegraded reports whether the status is critical or exhausted.
func (s Status) IsDegraded() bool {
	return s == StatusCritical || s == StatusExhausted
}
