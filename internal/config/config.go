// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AccountsPath string
	CacheDBPath  string
	SettingsPath string
	PollInterval time.Duration
}

// Poll interval bounds. Values below the minimum are clamped up rather
// than rejected.
const (
	DefaultPollInterval = 120 * time.Second
	MinPollInterval     = 30 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		AccountsPath: getEnvString("ACCOUNTS_PATH", getDefaultAccountsPath()),
		CacheDBPath:  getEnvString("CACHE_DB_PATH", getDefaultCacheDBPath()),
		SettingsPath: getEnvString("SETTINGS_PATH", getDefaultSettingsPath()),
		PollInterval: getEnvDuration("POLL_INTERVAL", DefaultPollInterval),
	}
	if cfg.PollInterval < MinPollInterval {
		cfg.PollInterval = MinPollInterval
	}

	for _, p := range []string{cfg.AccountsPath, cfg.CacheDBPath, cfg.SettingsPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "quota-monitor", ".env"),
			filepath.Join(home, ".quota-monitor", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "quota-monitor")
}

// getDefaultAccountsPath returns the default path for the accounts JSON file.
func getDefaultAccountsPath() string {
	return filepath.Join(configDir(), "accounts.json")
}

// getDefaultCacheDBPath returns the default path for the snapshot cache.
func getDefaultCacheDBPath() string {
	return filepath.Join(configDir(), "cache.db")
}

// getDefaultSettingsPath returns the default path for the settings JSON file.
func getDefaultSettingsPath() string {
	return filepath.Join(configDir(), "settings.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "2m", or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
