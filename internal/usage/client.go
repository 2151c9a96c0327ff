package usage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

const (
	claudeUsageURL = "https://api.anthropic.com/api/oauth/usage"
	codexUsageURL  = "https://chatgpt.com/backend-api/wham/usage"

	anthropicOAuthBeta = "oauth-2025-04-20"
)

// Client fetches raw usage payloads from the vendor APIs.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a usage client with a default timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchUsageRaw performs one usage request and returns the raw result.
// Any HTTP status is a successful fetch here; classification of non-2xx
// responses happens in Normalize.
func (c *Client) FetchUsageRaw(ctx context.Context, vendor models.Vendor, token string) (RawResponse, error) {
	if strings.TrimSpace(token) == "" {
		return RawResponse{}, fmt.Errorf("token is required")
	}

	var url string
	switch vendor {
	case models.VendorClaude:
		url = claudeUsageURL
	case models.VendorCodex:
		url = codexUsageURL
	default:
		return RawResponse{}, fmt.Errorf("%w: %q", ErrUnsupportedVendor, vendor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RawResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if vendor == models.VendorClaude {
		req.Header.Set("anthropic-beta", anthropicOAuthBeta)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RawResponse{}, fmt.Errorf("network request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResponse{}, fmt.Errorf("failed to read upstream response body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[strings.ToLower(key)] = resp.Header.Get(key)
	}

	return RawResponse{
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        string(body),
		Headers:     headers,
	}, nil
}

// FetchNormalizedUsage fetches and normalizes usage for one account.
func (c *Client) FetchNormalizedUsage(ctx context.Context, vendor models.Vendor, token string) (*Result, error) {
	if !vendor.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVendor, vendor)
	}
	raw, err := c.FetchUsageRaw(ctx, vendor, token)
	if err != nil {
		return nil, err
	}
	return Normalize(vendor, raw)
}
