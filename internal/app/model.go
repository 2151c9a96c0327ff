// Package app implements the main Bubble Tea application.
package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
	"github.com/t-ishigaki/quota-monitor-tui/internal/services"
	"github.com/t-ishigaki/quota-monitor-tui/internal/ui/styles"
)

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "上へ")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "下へ")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "更新")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "ヘルプ")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "終了")),
	}
}

// logBacklog caps the activity log kept for the footer.
const logBacklog = 100

// Model is the main application model.
type Model struct {
	manager *services.Manager
	events  chan services.ServiceEvent

	states    map[string]models.ServiceState
	order     []string
	selected  int
	logs      []services.LogLine
	lastCycle time.Time
	polled    bool

	keymap  KeyMap
	spinner spinner.Model

	width  int
	height int

	ready    bool
	showHelp bool

	now func() time.Time
}

// NewModel initializes the application model from the manager's current
// state so a restart shows cached data before the first poll completes.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := &Model{
		manager: mgr,
		states:  make(map[string]models.ServiceState),
		keymap:  DefaultKeyMap(),
		spinner: s,
		now:     time.Now,
	}

	if mgr != nil {
		m.states = mgr.GetAllStates()
		m.logs = mgr.LogLines()
		m.reorder()
	}

	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd()}

	if m.manager != nil {
		var sub tea.Cmd
		m.events, sub = m.manager.Subscribe()
		cmds = append(cmds, sub)
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case services.StateUpdatedEvent:
		m.states[msg.State.Key] = msg.State
		m.reorder()
		return m, m.rearm()

	case services.AccountsChangedEvent:
		m.syncStates()
		return m, m.rearm()

	case services.CycleCompletedEvent:
		m.polled = true
		m.lastCycle = msg.At
		m.syncStates()
		return m, m.rearm()

	case services.LogEvent:
		m.appendLog(msg.Line)
		return m, m.rearm()

	case services.ErrorEvent:
		m.appendLog(services.LogLine{
			Time:    m.now(),
			Level:   "warn",
			Message: fmt.Sprintf("[%s] %v", msg.Service, msg.Error),
		})
		return m, m.rearm()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Refresh):
		if m.manager != nil {
			m.manager.RefreshNow()
		}

	case key.Matches(msg, m.keymap.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.selected < len(m.order)-1 {
			m.selected++
		}
	}
	return nil
}

// rearm re-subscribes for the next service event.
func (m *Model) rearm() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return services.WaitForEvent(m.events)
}

// syncStates replaces the local state map with the poller's view, which
// drops accounts that were deleted since the last cycle.
func (m *Model) syncStates() {
	if m.manager == nil {
		return
	}
	m.states = m.manager.GetAllStates()
	m.reorder()
}

func (m *Model) reorder() {
	m.order = m.order[:0]
	for k := range m.states {
		m.order = append(m.order, k)
	}
	sort.Strings(m.order)

	if m.selected >= len(m.order) {
		m.selected = len(m.order) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) appendLog(line services.LogLine) {
	m.logs = append(m.logs, line)
	if len(m.logs) > logBacklog {
		m.logs = m.logs[1:]
	}
}

// history returns one window's utilization samples for the sparkline
// and detail chart.
func (m *Model) history(key, windowName string) []float64 {
	if m.manager == nil {
		return nil
	}
	return m.manager.History(key, windowName)
}
