package usage

import (
	"errors"
	"strings"
	"testing"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		status      int
		contentType string
		want        string
	}{
		{401, "application/json", "authentication failed (HTTP 401)"},
		{403, "text/html; charset=utf-8", "upstream blocked request (edge/WAF challenge)"},
		{403, "application/json", "permission denied (HTTP 403)"},
		{404, "application/json", "not found (HTTP 404)"},
		{429, "application/json", "rate limited (HTTP 429)"},
		{400, "application/json", "request rejected (HTTP 400)"},
		{500, "application/json", "server error (HTTP 500)"},
		{503, "text/html", "server error (HTTP 503)"},
		{418, "application/json", "request failed (HTTP 418)"},
	}

	for _, tt := range tests {
		if got := categorize(tt.status, tt.contentType); got != tt.want {
			t.Errorf("categorize(%d, %q) = %q, want %q", tt.status, tt.contentType, got, tt.want)
		}
	}
}

func TestNormalize_Success(t *testing.T) {
	raw := RawResponse{
		OK:          true,
		Status:      200,
		ContentType: "application/json",
		Body:        `{"five_hour": {"utilization": 42}}`,
	}

	result, err := Normalize(models.VendorClaude, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Windows) != 1 || result.Windows[0].Name != "5時間" {
		t.Fatalf("unexpected windows: %+v", result.Windows)
	}
	if result.Raw == nil {
		t.Error("decoded payload must be retained for diagnostics")
	}
}

func TestNormalize_MalformedShapeStillSucceeds(t *testing.T) {
	raw := RawResponse{OK: true, Status: 200, Body: `{"surprise": true}`}

	result, err := Normalize(models.VendorCodex, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Windows) != 1 || result.Windows[0].Name != models.UnknownFormatName {
		t.Fatalf("expected sentinel window, got %+v", result.Windows)
	}
}

func TestNormalize_NonJSONBody(t *testing.T) {
	raw := RawResponse{
		OK:          true,
		Status:      200,
		ContentType: "text/html",
		Body:        "<html>maintenance</html>",
	}

	_, err := Normalize(models.VendorClaude, raw)
	if !errors.Is(err, ErrNonJSONResponse) {
		t.Fatalf("expected ErrNonJSONResponse, got %v", err)
	}
}

func TestNormalize_UpstreamError(t *testing.T) {
	raw := RawResponse{
		OK:          false,
		Status:      401,
		ContentType: "application/json",
		Body:        `{"error": {"message": "token expired sk-ant-secret"}}`,
	}

	_, err := Normalize(models.VendorClaude, raw)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %T (%v)", err, err)
	}
	if upstream.Error() != "authentication failed (HTTP 401)" {
		t.Errorf("unexpected error message %q", upstream.Error())
	}
	if strings.Contains(upstream.Error(), "sk-ant") {
		t.Error("raw upstream body must never leak into the error message")
	}
	if !strings.Contains(upstream.Body, "token expired") {
		t.Error("raw body must be retained for diagnostic display")
	}
	if upstream.HTTPStatus != 401 {
		t.Errorf("expected HTTPStatus 401, got %d", upstream.HTTPStatus)
	}
}

func TestNormalize_EdgeChallengeBeatsBodyParse(t *testing.T) {
	// A 403 HTML challenge is an upstream error even though the body is
	// not JSON; the HTTP category takes precedence.
	raw := RawResponse{
		OK:          false,
		Status:      403,
		ContentType: "text/html",
		Body:        "<html>checking your browser</html>",
	}

	_, err := Normalize(models.VendorCodex, raw)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.Category != "upstream blocked request (edge/WAF challenge)" {
		t.Errorf("unexpected category %q", upstream.Category)
	}
}

func TestNormalize_UnsupportedVendor(t *testing.T) {
	raw := RawResponse{OK: true, Status: 200, Body: `{}`}

	_, err := Normalize(models.Vendor("gemini"), raw)
	if !errors.Is(err, ErrUnsupportedVendor) {
		t.Fatalf("expected ErrUnsupportedVendor, got %v", err)
	}
}
