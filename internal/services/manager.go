// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t-ishigaki/quota-monitor-tui/internal/config"
	"github.com/t-ishigaki/quota-monitor-tui/internal/db"
	"github.com/t-ishigaki/quota-monitor-tui/internal/logger"
	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/notify"
	"github.com/t-ishigaki/quota-monitor-tui/internal/services/accounts"
	"github.com/t-ishigaki/quota-monitor-tui/internal/services/poller"
	"github.com/t-ishigaki/quota-monitor-tui/internal/usage"
)

type (
	// AccountsChangedEvent is emitted when the accounts list changes.
	AccountsChangedEvent struct {
		Claude []models.Account
		Codex  []models.Account
	}

	// StateUpdatedEvent is emitted when one account's poll result lands.
	StateUpdatedEvent struct {
		State models.ServiceState
	}

	// CycleCompletedEvent is emitted after every account has been polled.
	CycleCompletedEvent struct {
		At time.Time
	}

	// LogEvent carries one activity-log line for the in-app footer.
	LogEvent struct {
		Line LogLine
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AccountsChangedEvent) isServiceEvent() {}
func (StateUpdatedEvent) isServiceEvent()    {}
func (CycleCompletedEvent) isServiceEvent()  {}
func (LogEvent) isServiceEvent()             {}
func (ErrorEvent) isServiceEvent()           {}

// LogLine is one entry of the in-app activity log.
type LogLine struct {
	Time    time.Time
	Level   string
	Message string
}

// logRingSize caps the in-app activity log.
const logRingSize = 100

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	accounts    *accounts.Service
	poller      *poller.Service
	database    *db.DB
	notifier    notify.Notifier
	settings    config.Settings
	settingsPth string
	logRing     []LogLine
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager and starts the poll loop.
func NewManager(cfg *config.Config) (*Manager, error) {
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		settings:    settings,
		settingsPth: cfg.SettingsPath,
		stopChan:    make(chan struct{}),
	}
	m.notifier = buildNotifier(settings)

	m.accounts, err = accounts.New(cfg.AccountsPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot cache: %w", err)
	}

	pollerConfig := poller.Config{
		PollInterval:  settings.PollInterval(),
		Notify:        settings.Notify,
		MaxConcurrent: 4,
	}
	if cfg.PollInterval > 0 {
		pollerConfig.PollInterval = cfg.PollInterval
	}

	m.poller = poller.New(usage.NewClient(), m.accounts, pollerConfig)

	// Seed from the previous session so the first poll can detect
	// transitions that happened while the monitor was down.
	if cached, err := m.database.LoadSnapshots(); err != nil {
		logger.Warn("failed to load cached snapshots", "error", err)
	} else if len(cached) > 0 {
		m.poller.Seed(cached)
	}

	go m.routeEvents()
	m.poller.Start()

	return m, nil
}

// buildNotifier assembles the notification fan-out from settings. The
// desktop channel is always present; webhooks join when configured.
func buildNotifier(s config.Settings) notify.Notifier {
	notifiers := []notify.Notifier{notify.Desktop{}}
	if s.ExternalNotify.Discord.Enabled && s.ExternalNotify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(s.ExternalNotify.Discord.WebhookURL))
	}
	if p := s.ExternalNotify.Pushover; p.Enabled && p.APIToken != "" && p.UserKey != "" {
		notifiers = append(notifiers, notify.NewPushover(p.APIToken, p.UserKey))
	}
	return &notify.Multi{Notifiers: notifiers}
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.accounts.Events():
			m.handleAccountEvent(event)

		case event := <-m.poller.Events():
			m.handlePollerEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleAccountEvent converts and broadcasts account events.
func (m *Manager) handleAccountEvent(event accounts.Event) {
	switch event.Type {
	case accounts.EventAccountsLoaded, accounts.EventAccountsChanged,
		accounts.EventAccountAdded, accounts.EventAccountUpdated,
		accounts.EventAccountDeleted:

		m.broadcast(AccountsChangedEvent{
			Claude: m.accounts.GetAccounts(models.VendorClaude),
			Codex:  m.accounts.GetAccounts(models.VendorCodex),
		})

	case accounts.EventError:
		m.broadcast(ErrorEvent{
			Service: "accounts",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handlePollerEvent(event poller.Event) {
	switch event.Type {
	case poller.EventStateUpdated:
		if event.State == nil {
			return
		}
		m.dispatchEffects(*event.State, event.Effects)

		if err := m.database.SaveSnapshot(*event.State); err != nil {
			logger.Error("failed to cache snapshot", "key", event.State.Key, "error", err)
		}

		m.broadcast(StateUpdatedEvent{State: *event.State})

	case poller.EventCycleCompleted:
		m.exportUsage()
		m.broadcast(CycleCompletedEvent{At: time.Now()})

	case poller.EventError:
		m.broadcast(ErrorEvent{
			Service: "poller",
			Error:   event.Error,
		})
	}
}

// dispatchEffects delivers the side effects of one status transition:
// log lines to the structured log and the in-app ring, notifications to
// the configured channels.
func (m *Manager) dispatchEffects(state models.ServiceState, effects usage.Effects) {
	for _, entry := range effects.Logs {
		switch entry.Level {
		case "crit":
			logger.Error(entry.Message)
		case "warn":
			logger.Warn(entry.Message)
		default:
			logger.Info(entry.Message)
		}
		line := LogLine{Time: time.Now(), Level: entry.Level, Message: entry.Message}
		m.appendLog(line)
		m.broadcast(LogEvent{Line: line})
	}

	for _, n := range effects.Notifications {
		if err := m.notifier.Send(n.Title, n.Body, state.Status); err != nil {
			logger.Error("failed to deliver notification", "title", n.Title, "error", err)
		}
	}
}

func (m *Manager) appendLog(line LogLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logRing = append(m.logRing, line)
	if len(m.logRing) > logRingSize {
		m.logRing = m.logRing[1:]
	}
}

// LogLines returns a copy of the in-app activity log, oldest first.
func (m *Manager) LogLines() []LogLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LogLine, len(m.logRing))
	copy(out, m.logRing)
	return out
}

// exportUsage writes the current states to the configured JSON file.
func (m *Manager) exportUsage() {
	m.mu.RLock()
	export := m.settings.UsageExport
	m.mu.RUnlock()

	if !export.Enabled || export.Path == "" {
		return
	}

	states := m.poller.GetAllStates()
	payload := struct {
		ExportedAt time.Time                      `json:"exportedAt"`
		Services   map[string]models.ServiceState `json:"services"`
	}{
		ExportedAt: time.Now().UTC(),
		Services:   states,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		logger.Error("failed to encode usage export", "error", err)
		return
	}

	tmp := export.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		logger.Error("failed to write usage export", "error", err)
		return
	}
	if err := os.Rename(tmp, export.Path); err != nil {
		logger.Error("failed to finalize usage export", "error", err)
	}
}

// Settings returns the current settings.
func (m *Manager) Settings() config.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// UpdateSettings persists new settings and applies them to the running
// services. The poll interval takes effect on the next restart.
func (m *Manager) UpdateSettings(s config.Settings) error {
	if err := config.SaveSettings(m.settingsPth, s); err != nil {
		return err
	}

	m.mu.Lock()
	m.settings = s
	m.notifier = buildNotifier(s)
	m.mu.Unlock()

	m.poller.UpdateNotifySettings(s.Notify)
	return nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetAllStates returns the latest state per account.
func (m *Manager) GetAllStates() map[string]models.ServiceState {
	return m.poller.GetAllStates()
}

// History returns the utilization history for one window of one account.
func (m *Manager) History(key, windowName string) []float64 {
	return m.poller.History(key, windowName)
}

// RefreshNow forces an immediate poll cycle.
func (m *Manager) RefreshNow() {
	go m.poller.PollAll(context.Background())
}

// Accounts returns the accounts service.
func (m *Manager) Accounts() *accounts.Service {
	return m.accounts
}

// Poller returns the poller service.
func (m *Manager) Poller() *poller.Service {
	return m.poller
}

// Database returns the snapshot cache for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.accounts.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.poller.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
