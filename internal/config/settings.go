package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// DiscordSettings configures the Discord webhook notifier.
type DiscordSettings struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhookUrl"`
}

// PushoverSettings configures the Pushover notifier.
type PushoverSettings struct {
	Enabled  bool   `json:"enabled"`
	APIToken string `json:"apiToken"`
	UserKey  string `json:"userKey"`
}

// ExternalNotify groups the optional outbound notification channels.
type ExternalNotify struct {
	Discord  DiscordSettings  `json:"discord"`
	Pushover PushoverSettings `json:"pushover"`
}

// UsageExport configures the per-cycle JSON snapshot export.
type UsageExport struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Settings is the persisted user configuration. Invalid values are
// clamped into range on load and save; the rest of the application can
// rely on a Settings value being well-formed.
type Settings struct {
	Notify          models.NotifySettings `json:"notify"`
	PollIntervalSec int                   `json:"pollIntervalSec"`
	ExternalNotify  ExternalNotify        `json:"externalNotify"`
	UsageExport     UsageExport           `json:"usageExport"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Notify:          models.DefaultNotifySettings(),
		PollIntervalSec: int(DefaultPollInterval / time.Second),
	}
}

// PollInterval returns the polling interval as a duration.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSec) * time.Second
}

// clamp forces all tunable values into their valid ranges. Thresholds
// live in [1,99]; the classifier itself applies whatever it is given.
func (s *Settings) clamp() {
	s.Notify.ThresholdWarning = clampPct(s.Notify.ThresholdWarning)
	s.Notify.ThresholdCritical = clampPct(s.Notify.ThresholdCritical)
	if s.PollIntervalSec <= 0 {
		s.PollIntervalSec = int(DefaultPollInterval / time.Second)
	}
	if min := int(MinPollInterval / time.Second); s.PollIntervalSec < min {
		s.PollIntervalSec = min
	}
}

func clampPct(v float64) float64 {
	switch {
	case v < 1:
		return 1
	case v > 99:
		return 99
	default:
		return v
	}
}

// LoadSettings reads settings from path, falling back to defaults when
// the file does not exist yet.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.clamp()
	return s, nil
}

// SaveSettings writes settings to path atomically.
func SaveSettings(path string, s Settings) error {
	s.clamp()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Rename(tmp, path)
}
