// Package notify delivers status-change notifications to the desktop
// and optional external channels.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// Notifier delivers one notification. Level is the status that caused
// it, used by channels that support priorities.
type Notifier interface {
	Send(title, body string, level models.Status) error
}

// Desktop sends native desktop notifications.
type Desktop struct{}

// Send shows a desktop notification via the OS notification service.
func (Desktop) Send(title, body string, _ models.Status) error {
	return beeep.Notify(title, body, "")
}

// Discord posts notifications to a Discord webhook.
type Discord struct {
	WebhookURL string
	Client     *http.Client
}

// NewDiscord creates a Discord notifier for the given webhook URL.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the notification as a single webhook message.
func (d *Discord) Send(title, body string, _ models.Status) error {
	payload, err := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: "**" + title + "**\n" + body})
	if err != nil {
		return fmt.Errorf("failed to encode discord payload: %w", err)
	}
	resp, err := d.Client.Post(d.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("discord webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook rejected message (HTTP %d)", resp.StatusCode)
	}
	return nil
}

// Pushover sends notifications through the Pushover API.
type Pushover struct {
	APIToken string
	UserKey  string
	Client   *http.Client

	// apiURL is overridable for tests.
	apiURL string
}

// NewPushover creates a Pushover notifier.
func NewPushover(apiToken, userKey string) *Pushover {
	return &Pushover{
		APIToken: apiToken,
		UserKey:  userKey,
		Client:   &http.Client{Timeout: 10 * time.Second},
		apiURL:   "https://api.pushover.net/1/messages.json",
	}
}

// Send posts the notification. Degraded statuses are sent as high
// priority so they bypass the user's quiet hours.
func (p *Pushover) Send(title, body string, level models.Status) error {
	form := url.Values{
		"token":   {p.APIToken},
		"user":    {p.UserKey},
		"title":   {title},
		"message": {body},
	}
	if level.IsDegraded() {
		form.Set("priority", "1")
	}

	resp, err := p.Client.PostForm(p.apiURL, form)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover rejected message (HTTP %d)", resp.StatusCode)
	}
	return nil
}

// Multi fans a notification out to several channels. Every channel is
// attempted; failures are joined into one error.
type Multi struct {
	Notifiers []Notifier
}

// Send delivers to all channels.
func (m *Multi) Send(title, body string, level models.Status) error {
	var errs []error
	for _, n := range m.Notifiers {
		if err := n.Send(title, body, level); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
