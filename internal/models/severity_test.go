package models

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{
		SeverityUnknown, SeverityOK, SeverityWarning, SeverityCritical, SeverityExhausted,
	}
	for i := 1; i < len(ordered); i++ {
		if !(ordered[i-1] < ordered[i]) {
			t.Errorf("expected %v < %v", ordered[i-1], ordered[i])
		}
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityUnknown, SeverityOK, SeverityWarning, SeverityCritical, SeverityExhausted} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}
		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != s {
			t.Errorf("round trip changed %v to %v", s, back)
		}
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"bogus"`), &s); err == nil {
		t.Error("expected error for unknown severity name")
	}
}

func TestParseSeverity(t *testing.T) {
	if sev, ok := ParseSeverity("critical"); !ok || sev != SeverityCritical {
		t.Errorf("ParseSeverity(critical) = %v, %v", sev, ok)
	}
	if _, ok := ParseSeverity("error"); ok {
		t.Error("error is a lifecycle status, not a severity")
	}
}

func TestSeverityStatus(t *testing.T) {
	if SeverityExhausted.Status() != StatusExhausted {
		t.Errorf("unexpected status %q", SeverityExhausted.Status())
	}
	if SeverityUnknown.Status() != StatusUnknown {
		t.Errorf("unexpected status %q", SeverityUnknown.Status())
	}
}

func TestStatusIsDegraded(t *testing.T) {
	degraded := map[Status]bool{
		StatusNone:      false,
		StatusUnknown:   false,
		StatusOK:        false,
		StatusWarning:   false,
		StatusCritical:  true,
		StatusExhausted: true,
		StatusError:     false,
	}
	for status, want := range degraded {
		if got := status.IsDegraded(); got != want {
			t.Errorf("%q.IsDegraded() = %v, want %v", status, got, want)
		}
	}
}
