package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "2m", time.Second, 2 * time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	accPath := getDefaultAccountsPath()
	expectedAcc := filepath.Join(home, ".config", "quota-monitor", "accounts.json")
	if accPath != expectedAcc {
		t.Errorf("getDefaultAccountsPath() = %q, want %q", accPath, expectedAcc)
	}

	dbPath := getDefaultCacheDBPath()
	expectedDB := filepath.Join(home, ".config", "quota-monitor", "cache.db")
	if dbPath != expectedDB {
		t.Errorf("getDefaultCacheDBPath() = %q, want %q", dbPath, expectedDB)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("ACCOUNTS_PATH", filepath.Join(tmpDir, "accounts.json"))
	os.Setenv("CACHE_DB_PATH", filepath.Join(tmpDir, "cache.db"))
	os.Setenv("SETTINGS_PATH", filepath.Join(tmpDir, "settings.json"))
	defer os.Unsetenv("ACCOUNTS_PATH")
	defer os.Unsetenv("CACHE_DB_PATH")
	defer os.Unsetenv("SETTINGS_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.AccountsPath != filepath.Join(tmpDir, "accounts.json") {
		t.Errorf("AccountsPath = %q", cfg.AccountsPath)
	}
}

func TestLoad_ClampsPollInterval(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("ACCOUNTS_PATH", filepath.Join(tmpDir, "accounts.json"))
	os.Setenv("CACHE_DB_PATH", filepath.Join(tmpDir, "cache.db"))
	os.Setenv("SETTINGS_PATH", filepath.Join(tmpDir, "settings.json"))
	os.Setenv("POLL_INTERVAL", "5s")
	defer os.Unsetenv("ACCOUNTS_PATH")
	defer os.Unsetenv("CACHE_DB_PATH")
	defer os.Unsetenv("SETTINGS_PATH")
	defer os.Unsetenv("POLL_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.PollInterval != MinPollInterval {
		t.Errorf("PollInterval = %v, want clamped to %v", cfg.PollInterval, MinPollInterval)
	}
}
