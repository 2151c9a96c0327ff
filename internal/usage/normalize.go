package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

var (
	// ErrUnsupportedVendor signals a caller bug: an unknown vendor
	// identifier. Unlike upstream failures it propagates instead of
	// degrading to a per-account error status.
	ErrUnsupportedVendor = errors.New("unsupported vendor")

	// ErrNonJSONResponse signals an HTTP-ok response whose body failed
	// to parse as JSON. Deliberately distinct from the HTTP categories.
	ErrNonJSONResponse = errors.New("upstream returned non-JSON response")
)

// RawResponse is the transport-agnostic result of one usage fetch. The
// normalization layer never inspects how it was obtained.
type RawResponse struct {
	OK          bool
	Status      int
	ContentType string
	Body        string
	Headers     map[string]string
}

// UpstreamError is a non-2xx upstream response mapped to a sanitized
// category. The raw body is kept for diagnostic display but never
// appears in the error message.
type UpstreamError struct {
	HTTPStatus int
	Category   string
	Body       string
}

func (e *UpstreamError) Error() string {
	return e.Category
}

// categorize maps an upstream HTTP status and content type to a
// human-readable category. Pure function; raw error bodies never leak
// into the result.
func categorize(status int, contentType string) string {
	switch {
	case status == 401:
		return "authentication failed (HTTP 401)"
	case status == 403 && strings.Contains(contentType, "text/html"):
		return "upstream blocked request (edge/WAF challenge)"
	case status == 403:
		return "permission denied (HTTP 403)"
	case status == 404:
		return "not found (HTTP 404)"
	case status == 429:
		return "rate limited (HTTP 429)"
	case status == 400:
		return "request rejected (HTTP 400)"
	case status >= 500:
		return fmt.Sprintf("server error (HTTP %d)", status)
	default:
		return fmt.Sprintf("request failed (HTTP %d)", status)
	}
}

// Result is the normalized outcome of one successful usage poll.
type Result struct {
	Raw     any
	Windows []models.UsageWindow
}

// Normalize converts a raw fetch result into usage windows for the
// given vendor. Upstream failures and non-JSON bodies become errors;
// any JSON body, however malformed in shape, yields at least the
// sentinel window.
func Normalize(vendor models.Vendor, raw RawResponse) (*Result, error) {
	if !vendor.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVendor, vendor)
	}

	var parsed any
	_ = json.Unmarshal([]byte(raw.Body), &parsed)

	if !raw.OK {
		return nil, &UpstreamError{
			HTTPStatus: raw.Status,
			Category:   categorize(raw.Status, raw.ContentType),
			Body:       raw.Body,
		}
	}
	if parsed == nil {
		return nil, ErrNonJSONResponse
	}

	var windows []models.UsageWindow
	switch vendor {
	case models.VendorClaude:
		windows = ParseClaudeUsage(parsed)
	case models.VendorCodex:
		windows = ParseCodexUsage(parsed)
	}

	return &Result{Raw: parsed, Windows: windows}, nil
}
