package accounts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func drainEvents(s *Service) {
	for {
		select {
		case <-s.Events():
		default:
			return
		}
	}
}

func TestNew_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("accounts file was not created")
	}
	if s.Count() != 0 {
		t.Errorf("expected empty service, got %d accounts", s.Count())
	}
}

func TestAddAccount(t *testing.T) {
	s := newTestService(t)
	drainEvents(s)

	acc := models.Account{Name: "main", Token: "tok-1"}
	if err := s.AddAccount(models.VendorClaude, acc); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}

	got := s.GetAccounts(models.VendorClaude)
	if len(got) != 1 {
		t.Fatalf("expected 1 account, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("expected generated ID")
	}
	if got[0].AddedAt.IsZero() {
		t.Error("expected AddedAt to be set")
	}
	if len(s.GetAccounts(models.VendorCodex)) != 0 {
		t.Error("vendors must not share account lists")
	}

	select {
	case ev := <-s.Events():
		if ev.Type != EventAccountAdded || ev.Vendor != models.VendorClaude {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Error("expected an add event")
	}
}

func TestAddAccount_RejectsDuplicateName(t *testing.T) {
	s := newTestService(t)

	if err := s.AddAccount(models.VendorCodex, models.Account{Name: "work"}); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	if err := s.AddAccount(models.VendorCodex, models.Account{Name: "work"}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	// Same name under another vendor is fine.
	if err := s.AddAccount(models.VendorClaude, models.Account{Name: "work"}); err != nil {
		t.Errorf("same name under another vendor should be allowed: %v", err)
	}
}

func TestAddAccount_UnknownVendor(t *testing.T) {
	s := newTestService(t)
	if err := s.AddAccount(models.Vendor("gemini"), models.Account{Name: "x"}); err == nil {
		t.Error("expected unknown vendor to be rejected")
	}
}

func TestUpdateAccount(t *testing.T) {
	s := newTestService(t)

	acc := models.Account{ID: "a1", Name: "main", Token: "old"}
	if err := s.AddAccount(models.VendorClaude, acc); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}

	acc.Token = "new"
	if err := s.UpdateAccount(models.VendorClaude, acc); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}

	got := s.GetAccount(models.VendorClaude, "a1")
	if got == nil || got.Token != "new" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.AddedAt.IsZero() {
		t.Error("AddedAt must be preserved across updates")
	}

	if err := s.UpdateAccount(models.VendorClaude, models.Account{ID: "missing"}); err == nil {
		t.Error("expected error for unknown account")
	}
}

func TestDeleteAccount(t *testing.T) {
	s := newTestService(t)

	if err := s.AddAccount(models.VendorCodex, models.Account{ID: "b1", Name: "work"}); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	if err := s.DeleteAccount(models.VendorCodex, "b1"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("expected 0 accounts, got %d", s.Count())
	}

	if err := s.DeleteAccount(models.VendorCodex, "b1"); err == nil {
		t.Error("expected error deleting missing account")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := s.AddAccount(models.VendorClaude, models.Account{ID: "a1", Name: "main", Token: "tok"}); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	_ = s.Close()

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file failed: %v", err)
	}
	defer reloaded.Close()

	got := reloaded.GetAccounts(models.VendorClaude)
	if len(got) != 1 || got[0].ID != "a1" || got[0].Token != "tok" {
		t.Errorf("accounts lost across restart: %+v", got)
	}
}

func TestExternalFileChangeReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()
	drainEvents(s)

	file := models.AccountsFile{
		Version: 1,
		Codex:   []models.Account{{ID: "ext-1", Name: "external"}},
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Type == EventAccountsChanged {
				got := s.GetAccounts(models.VendorCodex)
				if len(got) != 1 || got[0].ID != "ext-1" {
					t.Fatalf("reload did not pick up external change: %+v", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for accounts change event")
		}
	}
}
