package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

func TestDiscordSend(t *testing.T) {
	var received struct {
		Content string `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("payload is not valid JSON: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	if err := d.Send("Claude: main ⚠️", "ステータス: critical", models.StatusCritical); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !strings.HasPrefix(received.Content, "**Claude: main ⚠️**\n") {
		t.Errorf("unexpected content %q", received.Content)
	}
	if !strings.Contains(received.Content, "ステータス: critical") {
		t.Errorf("body missing from content %q", received.Content)
	}
}

func TestDiscordSend_ControlCharacters(t *testing.T) {
	var received struct {
		Content string `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("payload is not valid JSON: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	// Bytes like 0x07 have no single-letter JSON escape and must come
	// out as \u0007, not Go's \a.
	body := "line1\nline2\ttabbed\x07bell"
	d := NewDiscord(srv.URL)
	if err := d.Send("title", body, models.StatusCritical); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !strings.Contains(received.Content, body) {
		t.Errorf("content did not round-trip, got %q", received.Content)
	}
}

func TestDiscordSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	if err := d.Send("t", "b", models.StatusOK); err == nil {
		t.Error("expected error for rejected webhook")
	}
}

func TestPushoverSend(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushover("app-token", "user-key")
	p.apiURL = srv.URL

	if err := p.Send("Codex: work ⚠️", "exhausted", models.StatusExhausted); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got := form["token"]; len(got) != 1 || got[0] != "app-token" {
		t.Errorf("token = %v", got)
	}
	if got := form["priority"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("degraded status should send high priority, got %v", got)
	}
}

func TestPushoverSend_NormalPriority(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushover("app-token", "user-key")
	p.apiURL = srv.URL

	if err := p.Send("recovered", "ok", models.StatusOK); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, ok := form["priority"]; ok {
		t.Errorf("non-degraded status must not set priority, got %v", form)
	}
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Send(title, body string, level models.Status) error {
	f.calls++
	return f.err
}

func TestMultiSend_AttemptsAllChannels(t *testing.T) {
	failing := &fakeNotifier{err: errors.New("boom")}
	working := &fakeNotifier{}
	m := &Multi{Notifiers: []Notifier{failing, working}}

	err := m.Send("t", "b", models.StatusWarning)
	if err == nil {
		t.Error("expected joined error")
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("all channels must be attempted: %d, %d", failing.calls, working.calls)
	}
}

func TestMultiSend_Empty(t *testing.T) {
	m := &Multi{}
	if err := m.Send("t", "b", models.StatusOK); err != nil {
		t.Errorf("empty fan-out should succeed, got %v", err)
	}
}
