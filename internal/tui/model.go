// Package tui renders the session ViewModel and forwards user intents to the
// session controller. It never mutates session state directly.
package tui

import (
	"context"
	"math/rand"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kmorrow/librarian/internal/session"
)

var placeholders = []string{
	"Recommend a book about friendship and magic",
	"What do you suggest for someone who loves war stories?",
	"Fantasy with a coming-of-age vibe",
	"Historical fiction with strong sisterhood",
	"Adventure quest with moral dilemmas",
}

// Controller is the session surface the TUI issues intents against.
type Controller interface {
	Snapshot() session.ViewModel
	SetOnChange(func())
	SetQuery(string)
	SubmitQuery(context.Context) bool
	Reindex(context.Context) bool
	StartCapture(context.Context) bool
	StopCapture()
	CancelCapture()
	Listen(context.Context) bool
	LookupSummary(context.Context, string) bool
	CoverURL(string) string
	RefreshHealth(context.Context)
}

// Model is the root bubbletea model.
type Model struct {
	ctrl Controller
	ctx  context.Context

	vm          session.ViewModel
	changes     chan struct{}
	placeholder string
	baseURL     string

	recording bool
	selected  int
	width     int
	height    int
}

// New constructs the model and registers for controller change notifications.
func New(ctx context.Context, ctrl Controller, baseURL string) Model {
	changes := make(chan struct{}, 16)
	ctrl.SetOnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
			// A notification is already pending; snapshots are pulled fresh.
		}
	})

	return Model{
		ctrl:        ctrl,
		ctx:         ctx,
		vm:          ctrl.Snapshot(),
		changes:     changes,
		placeholder: placeholders[rand.Intn(len(placeholders))],
		baseURL:     baseURL,
	}
}

// Init probes service health and starts listening for state changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.healthCmd(), m.waitForChange())
}

func (m Model) healthCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.RefreshHealth(m.ctx)
		return nil
	}
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return vmMsg{VM: m.ctrl.Snapshot()}
	}
}

func (m Model) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg{Accepted: m.ctrl.SubmitQuery(m.ctx)}
	}
}

func (m Model) reindexCmd() tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg{Accepted: m.ctrl.Reindex(m.ctx)}
	}
}

func (m Model) startCaptureCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.StartCapture(m.ctx)
		return captureFinishedMsg{}
	}
}

func (m Model) listenCmd() tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg{Accepted: m.ctrl.Listen(m.ctx)}
	}
}

func (m Model) summaryCmd(title string) tea.Cmd {
	return func() tea.Msg {
		return intentDoneMsg{Accepted: m.ctrl.LookupSummary(m.ctx, title)}
	}
}

// Update handles terminal events and controller notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case vmMsg:
		m.vm = msg.VM
		m.clampSelection()
		return m, m.waitForChange()

	case captureFinishedMsg:
		m.recording = false
		return m, nil

	case intentDoneMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.recording {
			m.ctrl.CancelCapture()
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		return m, m.submitCmd()

	case "ctrl+r":
		return m, m.reindexCmd()

	case "ctrl+t":
		if m.recording {
			m.ctrl.StopCapture()
			return m, nil
		}
		m.recording = true
		return m, m.startCaptureCmd()

	case "ctrl+l":
		return m, m.listenCmd()

	case "ctrl+s":
		if title, ok := m.selectedCandidate(); ok {
			return m, m.summaryCmd(title)
		}
		return m, nil

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.vm.Result != nil && m.selected < len(m.vm.Result.Candidates)-1 {
			m.selected++
		}
		return m, nil

	case "backspace":
		query := []rune(m.vm.Query)
		if len(query) > 0 {
			m.setQuery(string(query[:len(query)-1]))
		}
		return m, nil

	case " ":
		m.setQuery(m.vm.Query + " ")
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		m.setQuery(m.vm.Query + string(msg.Runes))
	}
	return m, nil
}

// setQuery keeps the local snapshot in step so rapid keystrokes never build
// on a stale query between change notifications.
func (m *Model) setQuery(query string) {
	m.ctrl.SetQuery(query)
	m.vm.Query = m.ctrl.Snapshot().Query
}

func (m *Model) clampSelection() {
	if m.vm.Result == nil || len(m.vm.Result.Candidates) == 0 {
		m.selected = 0
		return
	}
	if m.selected >= len(m.vm.Result.Candidates) {
		m.selected = len(m.vm.Result.Candidates) - 1
	}
}

func (m Model) selectedCandidate() (string, bool) {
	if m.vm.Result == nil || len(m.vm.Result.Candidates) == 0 {
		return "", false
	}
	return m.vm.Result.Candidates[m.selected].Title, true
}
