// Package poller drives the periodic usage polling cycle.
package poller

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/logger"
	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/usage"
)

// Fetcher fetches and normalizes usage for one account.
type Fetcher interface {
	FetchNormalizedUsage(ctx context.Context, vendor models.Vendor, token string) (*usage.Result, error)
}

// AccountSource provides the accounts to poll.
type AccountSource interface {
	GetAccounts(vendor models.Vendor) []models.Account
}

// Event represents a poller event.
type Event struct {
	Error   error
	State   *models.ServiceState
	Effects usage.Effects
	Type    EventType
}

// EventType defines the type of poller event.
type EventType int

const (
	// EventCycleStarted indicates that a poll cycle has begun.
	EventCycleStarted EventType = iota
	// EventStateUpdated indicates that one account's state was refreshed.
	EventStateUpdated
	// EventCycleCompleted indicates that a poll cycle has finished.
	EventCycleCompleted
	// EventError indicates a failure outside the per-account error states.
	EventError
)

// Config holds configuration for the poller service.
type Config struct {
	PollInterval  time.Duration
	Notify        models.NotifySettings
	MaxConcurrent int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  120 * time.Second,
		Notify:        models.DefaultNotifySettings(),
		MaxConcurrent: 4,
	}
}

// Service polls all configured accounts on a ticker, keeps the latest
// state per account, and computes the transition effects of each
// status change. A fetch failure for one account never disturbs the
// states of the others.
type Service struct {
	fetcher    Fetcher
	accounts   AccountSource
	states     map[string]models.ServiceState
	histories  map[string]map[string]*models.RollingHistory
	eventChan  chan Event
	stopChan   chan struct{}
	pollTicker *time.Ticker
	fetchSem   chan struct{}
	config     Config
	now        func() time.Time
	mu         sync.RWMutex
}

// New creates a poller service. Call Start to begin the poll loop.
func New(fetcher Fetcher, accounts AccountSource, config Config) *Service {
	if config.PollInterval == 0 {
		config = DefaultConfig()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}

	return &Service{
		fetcher:   fetcher,
		accounts:  accounts,
		states:    make(map[string]models.ServiceState),
		histories: make(map[string]map[string]*models.RollingHistory),
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		fetchSem:  make(chan struct{}, config.MaxConcurrent),
		config:    config,
		now:       time.Now,
	}
}

// Start begins the background polling goroutine.
func (s *Service) Start() {
	go s.pollLoop()
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Seed preloads states from a previous session so the first real poll
// computes transitions against them instead of treating every account
// as newly observed.
func (s *Service) Seed(states map[string]models.ServiceState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.states, states)
}

// GetState returns the latest state for one account key.
func (s *Service) GetState(key string) (models.ServiceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	return state, ok
}

// GetAllStates returns a copy of all account states.
func (s *Service) GetAllStates() map[string]models.ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]models.ServiceState, len(s.states))
	maps.Copy(result, s.states)
	return result
}

// History returns the recorded utilization series for one window of one
// account, oldest first.
func (s *Service) History(key, windowName string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byWindow, ok := s.histories[key]
	if !ok {
		return nil
	}
	h, ok := byWindow[windowName]
	if !ok {
		return nil
	}
	return h.Points()
}

// UpdateNotifySettings replaces the notification policy used for
// classification and transition effects from the next cycle on.
func (s *Service) UpdateNotifySettings(ns models.NotifySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Notify = ns
}

// PollAll runs one full poll cycle over every configured account.
func (s *Service) PollAll(ctx context.Context) {
	s.sendEvent(Event{Type: EventCycleStarted})

	type job struct {
		vendor  models.Vendor
		account models.Account
	}
	var jobs []job
	for _, vendor := range models.Vendors {
		for _, acc := range s.accounts.GetAccounts(vendor) {
			jobs = append(jobs, job{vendor: vendor, account: acc})
		}
	}

	next := make(map[string]models.ServiceState, len(jobs))
	var nextMu sync.Mutex
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()

			s.fetchSem <- struct{}{}
			defer func() { <-s.fetchSem }()

			state := s.pollOne(ctx, j.vendor, j.account)
			nextMu.Lock()
			next[state.Key] = state
			nextMu.Unlock()
		}(j)
	}
	wg.Wait()

	s.applyCycle(next)
	s.sendEvent(Event{Type: EventCycleCompleted})
}

// pollOne fetches one account and builds its next state. Errors degrade
// to an error-status state instead of propagating.
func (s *Service) pollOne(ctx context.Context, vendor models.Vendor, account models.Account) models.ServiceState {
	state := models.ServiceState{
		Key:       fmt.Sprintf("%s:%s", vendor, account.ID),
		Label:     fmt.Sprintf("%s: %s", vendor.Label(), account.Name),
		FetchedAt: s.now(),
	}

	if !account.HasToken() {
		state.Status = models.StatusError
		state.Error = "no token configured"
		return state
	}

	result, err := s.fetcher.FetchNormalizedUsage(ctx, vendor, account.Token)
	if err != nil {
		if errors.Is(err, usage.ErrUnsupportedVendor) {
			// Caller bug, not an upstream condition. Surface it loudly.
			s.sendEvent(Event{Type: EventError, Error: err})
		}
		state.Status = models.StatusError
		state.Error = err.Error()
		return state
	}

	s.mu.RLock()
	ns := s.config.Notify
	s.mu.RUnlock()

	windows := usage.ClassifyWindows(result.Windows, ns)
	state.Windows = windows
	state.Status = usage.DeriveServiceStatus(windows).Status()
	return state
}

// applyCycle replaces the state map with this cycle's results, emitting
// one update event per account with its transition effects. Accounts
// removed from the configuration drop out of the map here.
func (s *Service) applyCycle(next map[string]models.ServiceState) {
	s.mu.Lock()
	prev := s.states
	s.states = next
	ns := s.config.Notify
	now := s.now()

	for key, state := range next {
		if state.Status != models.StatusError {
			s.recordHistoryLocked(key, state.Windows)
		}
	}
	s.mu.Unlock()

	for key, state := range next {
		var effects usage.Effects
		// An error state replaces the previous status silently; entry
		// effects fire only on real severity observations.
		if state.Status != models.StatusError {
			effects = usage.BuildTransitionEffects(prev[key].Status, state.Status, state.Label, state.Windows, ns, now)
		}
		st := state
		s.sendEvent(Event{Type: EventStateUpdated, State: &st, Effects: effects})
	}
}

// recordHistoryLocked appends this cycle's utilization samples.
func (s *Service) recordHistoryLocked(key string, windows []models.UsageWindow) {
	byWindow, ok := s.histories[key]
	if !ok {
		byWindow = make(map[string]*models.RollingHistory)
		s.histories[key] = byWindow
	}
	for _, w := range windows {
		if w.Name == models.UnknownFormatName {
			continue
		}
		h, ok := byWindow[w.Name]
		if !ok {
			h = &models.RollingHistory{}
			byWindow[w.Name] = h
		}
		h.Record(w.Utilization)
	}
}

// pollLoop runs the background polling goroutine.
func (s *Service) pollLoop() {
	ctx := context.Background()

	s.PollAll(ctx)

	s.pollTicker = time.NewTicker(s.config.PollInterval)
	defer s.pollTicker.Stop()

	for {
		select {
		case <-s.pollTicker.C:
			s.PollAll(ctx)
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
			logger.Warn("dropping poller event", "type", event.Type)
		}
	}
}

// Close stops the service and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}
