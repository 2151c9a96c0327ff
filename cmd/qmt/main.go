// Package main is the entry point for the quota monitor TUI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t-ishigaki/quota-monitor-tui/internal/app"
	"github.com/t-ishigaki/quota-monitor-tui/internal/config"
	"github.com/t-ishigaki/quota-monitor-tui/internal/logger"
	"github.com/t-ishigaki/quota-monitor-tui/internal/services"
	"github.com/t-ishigaki/quota-monitor-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Bubble Tea owns the terminal, so the structured log goes to a file
	// next to the snapshot cache.
	logPath := filepath.Join(filepath.Dir(cfg.CacheDBPath), "monitor.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(mgr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func printUsage() {
	fmt.Println(`Quota Monitor TUI - Claude / Codex usage and quota monitor

Usage:
  qmt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  j/k, Up/Down    Select account
  r               Refresh all accounts
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  ACCOUNTS_PATH   Accounts JSON file path
  CACHE_DB_PATH   Snapshot cache (SQLite) path
  SETTINGS_PATH   Settings JSON file path
  POLL_INTERVAL   Polling interval (default: 120s, minimum: 30s)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/quota-monitor/.env
  - ~/.quota-monitor/.env`)
}
