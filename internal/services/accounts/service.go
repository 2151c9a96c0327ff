// Package accounts provides account management with file watching and persistence.
package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/t-ishigaki/quota-monitor-tui/internal/logger"
	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// Event represents an account service event.
type Event struct {
	Type    EventType
	Error   error
	Vendor  models.Vendor
	Account *models.Account
}

// EventType defines the type of account event.
type EventType int

const (
	EventAccountsLoaded EventType = iota
	EventAccountsChanged
	EventAccountAdded
	EventAccountUpdated
	EventAccountDeleted
	EventError
)

// Service manages vendor accounts with file watching and change
// notifications. The file may be edited externally while the monitor
// runs; changes are picked up through fsnotify.
type Service struct {
	mu            sync.RWMutex
	file          models.AccountsFile
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a new accounts service and starts file watching.
func New(filePath string) (*Service, error) {
	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.loadAccounts(); err != nil {
		if os.IsNotExist(err) {
			if err := s.saveAccounts(); err != nil {
				return nil, fmt.Errorf("failed to create accounts file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load accounts: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventAccountsLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to account changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetAccounts returns a copy of the accounts for one vendor.
func (s *Service) GetAccounts(vendor models.Vendor) []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.file.ForVendor(vendor)
	accounts := make([]models.Account, len(src))
	copy(accounts, src)
	return accounts
}

// GetAccount returns one account by vendor and ID.
func (s *Service) GetAccount(vendor models.Vendor, id string) *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.file.ForVendor(vendor) {
		if acc.ID == id {
			out := acc
			return &out
		}
	}
	return nil
}

// AddAccount adds a new account for a vendor.
func (s *Service) AddAccount(vendor models.Vendor, account models.Account) error {
	if !vendor.Valid() {
		return fmt.Errorf("unknown vendor: %q", vendor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.file.ForVendor(vendor)
	for _, acc := range list {
		if acc.ID == account.ID && account.ID != "" {
			return fmt.Errorf("account %s already exists", account.ID)
		}
		if acc.Name == account.Name {
			return fmt.Errorf("account named %q already exists", account.Name)
		}
	}

	if account.ID == "" {
		account.ID = fmt.Sprintf("acc_%d", time.Now().UnixNano())
	}
	if account.AddedAt.IsZero() {
		account.AddedAt = time.Now()
	}

	s.file.SetForVendor(vendor, append(list, account))

	if err := s.saveAccountsLocked(); err != nil {
		s.file.SetForVendor(vendor, list)
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.sendEvent(Event{Type: EventAccountAdded, Vendor: vendor, Account: &account})
	return nil
}

// UpdateAccount updates an existing account.
func (s *Service) UpdateAccount(vendor models.Vendor, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.file.ForVendor(vendor)
	found := false
	for i, acc := range list {
		if acc.ID == account.ID {
			if account.AddedAt.IsZero() {
				account.AddedAt = acc.AddedAt
			}
			list[i] = account
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("account not found: %s", account.ID)
	}

	if err := s.saveAccountsLocked(); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.sendEvent(Event{Type: EventAccountUpdated, Vendor: vendor, Account: &account})
	return nil
}

// DeleteAccount removes an account by ID.
func (s *Service) DeleteAccount(vendor models.Vendor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.file.ForVendor(vendor)
	idx := -1
	var deleted models.Account
	for i, acc := range list {
		if acc.ID == id {
			idx = i
			deleted = acc
			break
		}
	}

	if idx == -1 {
		return fmt.Errorf("account not found: %s", id)
	}

	s.file.SetForVendor(vendor, append(list[:idx], list[idx+1:]...))

	if err := s.saveAccountsLocked(); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.sendEvent(Event{Type: EventAccountDeleted, Vendor: vendor, Account: &deleted})
	return nil
}

// Count returns the total number of accounts across vendors.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, v := range models.Vendors {
		total += len(s.file.ForVendor(v))
	}
	return total
}

// loadAccounts loads accounts from the JSON file.
func (s *Service) loadAccounts() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file models.AccountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse accounts file: %w", err)
	}

	s.file = file
	return nil
}

// saveAccounts saves accounts to the JSON file (public version).
func (s *Service) saveAccounts() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAccountsLocked()
}

// saveAccountsLocked saves accounts to the JSON file (must hold lock).
func (s *Service) saveAccountsLocked() error {
	s.file.Version = 1
	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our accounts file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads accounts from file after external change.
func (s *Service) handleFileChange() {
	s.mu.Lock()
	err := s.loadAccounts()
	s.mu.Unlock()

	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventAccountsChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
