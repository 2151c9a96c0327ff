package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}
	if s.PollIntervalSec != 120 {
		t.Errorf("PollIntervalSec = %d, want 120", s.PollIntervalSec)
	}
	if !s.Notify.Critical || !s.Notify.Recovery || s.Notify.Warning {
		t.Errorf("unexpected default notify policy %+v", s.Notify)
	}
	if s.Notify.ThresholdWarning != 75 || s.Notify.ThresholdCritical != 90 {
		t.Errorf("unexpected default thresholds %+v", s.Notify)
	}
}

func TestSaveLoadSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s := DefaultSettings()
	s.Notify.Warning = true
	s.Notify.ThresholdWarning = 60
	s.PollIntervalSec = 300
	s.ExternalNotify.Discord = DiscordSettings{Enabled: true, WebhookURL: "https://discord.example/webhook"}
	s.UsageExport = UsageExport{Enabled: true, Path: "/tmp/usage.json"}

	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}

	back, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}
	if back.Notify.ThresholdWarning != 60 || !back.Notify.Warning {
		t.Errorf("notify settings lost in round trip: %+v", back.Notify)
	}
	if back.PollIntervalSec != 300 {
		t.Errorf("PollIntervalSec = %d, want 300", back.PollIntervalSec)
	}
	if !back.ExternalNotify.Discord.Enabled || back.ExternalNotify.Discord.WebhookURL == "" {
		t.Errorf("discord settings lost: %+v", back.ExternalNotify.Discord)
	}
	if !back.UsageExport.Enabled {
		t.Errorf("usage export settings lost: %+v", back.UsageExport)
	}
}

func TestSettings_ClampOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	payload := `{"notify": {"thresholdWarning": 0, "thresholdCritical": 150}, "pollIntervalSec": 5}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}
	if s.Notify.ThresholdWarning != 1 {
		t.Errorf("ThresholdWarning = %v, want clamped to 1", s.Notify.ThresholdWarning)
	}
	if s.Notify.ThresholdCritical != 99 {
		t.Errorf("ThresholdCritical = %v, want clamped to 99", s.Notify.ThresholdCritical)
	}
	if s.PollIntervalSec != 30 {
		t.Errorf("PollIntervalSec = %d, want clamped to 30", s.PollIntervalSec)
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Error("expected error for malformed settings file")
	}
}
