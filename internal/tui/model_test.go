package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kmorrow/librarian/internal/api"
	"github.com/kmorrow/librarian/internal/session"
)

type fakeController struct {
	vm       session.ViewModel
	onChange func()

	submits  int
	reindex  int
	captures int
	stops    int
	cancels  int
	listens  int
	lookups  []string
}

func (f *fakeController) Snapshot() session.ViewModel { return f.vm }
func (f *fakeController) SetOnChange(fn func())       { f.onChange = fn }
func (f *fakeController) SetQuery(q string)           { f.vm.Query = q }
func (f *fakeController) SubmitQuery(context.Context) bool {
	f.submits++
	return true
}
func (f *fakeController) Reindex(context.Context) bool {
	f.reindex++
	return true
}
func (f *fakeController) StartCapture(context.Context) bool {
	f.captures++
	return true
}
func (f *fakeController) StopCapture()   { f.stops++ }
func (f *fakeController) CancelCapture() { f.cancels++ }
func (f *fakeController) Listen(context.Context) bool {
	f.listens++
	return true
}
func (f *fakeController) LookupSummary(_ context.Context, title string) bool {
	f.lookups = append(f.lookups, title)
	return true
}
func (f *fakeController) CoverURL(title string) string {
	return "http://127.0.0.1:8000/cover?title=" + title
}
func (f *fakeController) RefreshHealth(context.Context) {}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestNewModel(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	if m.recording {
		t.Error("new model should not be recording")
	}
	if m.placeholder == "" {
		t.Error("new model should pick a placeholder")
	}
	if ctrl.onChange == nil {
		t.Error("model should register a change callback")
	}
}

func TestChangeNotificationRefreshesSnapshot(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	ctrl.vm.Busy = true
	ctrl.onChange()

	msg := runCmd(t, m.waitForChange())
	vm, ok := msg.(vmMsg)
	if !ok {
		t.Fatalf("msg = %T, want vmMsg", msg)
	}
	if !vm.VM.Busy {
		t.Error("snapshot should reflect the updated state")
	}
}

func TestTypingUpdatesQuery(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	model := updated.(Model)
	if ctrl.vm.Query != "hi" {
		t.Errorf("query = %q, want %q", ctrl.vm.Query, "hi")
	}

	model.vm = ctrl.vm
	model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if ctrl.vm.Query != "h" {
		t.Errorf("query after backspace = %q, want %q", ctrl.vm.Query, "h")
	}
}

func TestSpaceJoinsWords(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Fantasy")})
	model := updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	model = updated.(Model)

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("vibe")})

	if ctrl.vm.Query != "Fantasy vibe" {
		t.Errorf("query = %q, want %q", ctrl.vm.Query, "Fantasy vibe")
	}
}

func TestEnterSubmitsQuery(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, cmd)

	if ctrl.submits != 1 {
		t.Errorf("submits = %d, want 1", ctrl.submits)
	}
}

func TestRecordToggle(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	model := updated.(Model)
	if !model.recording {
		t.Fatal("first ctrl+t should start recording")
	}
	msg := runCmd(t, cmd)
	if _, ok := msg.(captureFinishedMsg); !ok {
		t.Fatalf("msg = %T, want captureFinishedMsg", msg)
	}
	if ctrl.captures != 1 {
		t.Errorf("captures = %d, want 1", ctrl.captures)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	model = updated.(Model)
	if ctrl.stops != 1 {
		t.Errorf("stops = %d, want 1", ctrl.stops)
	}

	updated, _ = model.Update(captureFinishedMsg{})
	model = updated.(Model)
	if model.recording {
		t.Error("capture finish should clear the recording flag")
	}
}

func TestEscCancelsWhileRecording(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")
	m.recording = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("esc while recording should not quit")
	}
	if ctrl.cancels != 1 {
		t.Errorf("cancels = %d, want 1", ctrl.cancels)
	}
}

func TestCandidateSelectionAndSummary(t *testing.T) {
	ctrl := &fakeController{vm: session.ViewModel{Result: &api.Recommendation{
		Title: "Wren's Oath",
		Candidates: []api.CandidateBook{
			{Title: "Wren's Oath", Author: "M. Hale"},
			{Title: "The Long March", Author: "R. Voss"},
		},
	}}}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	model := updated.(Model)
	if model.selected != 1 {
		t.Fatalf("selected = %d, want 1", model.selected)
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	runCmd(t, cmd)
	if len(ctrl.lookups) != 1 || ctrl.lookups[0] != "The Long March" {
		t.Errorf("lookups = %v, want [The Long March]", ctrl.lookups)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)
	if model.selected != 0 {
		t.Errorf("selected = %d, want 0", model.selected)
	}
}

func TestSelectionClampedWhenResultShrinks(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")
	m.selected = 3

	updated, _ := m.Update(vmMsg{VM: session.ViewModel{Result: &api.Recommendation{
		Title:      "Wren's Oath",
		Candidates: []api.CandidateBook{{Title: "Wren's Oath"}},
	}}})
	model := updated.(Model)
	if model.selected != 0 {
		t.Errorf("selected = %d, want 0", model.selected)
	}
}

func TestViewRendersStates(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, "http://127.0.0.1:8000")

	out := m.View()
	if !strings.Contains(out, "Smart Librarian") {
		t.Error("view should render the header")
	}
	if !strings.Contains(out, m.placeholder) {
		t.Error("empty query should render the placeholder")
	}
	if !strings.Contains(out, "offline") {
		t.Error("view should render the offline indicator")
	}

	m.vm = session.ViewModel{
		Query:        "friendship and magic",
		Busy:         true,
		ServerOnline: true,
		Error:        "index unavailable",
		Result: &api.Recommendation{
			Title:    "Wren's Oath",
			Blurb:    "A found-family quest.",
			Metadata: &api.BookMetadata{Author: "M. Hale", Year: 2019, Genres: []string{"fantasy"}},
			Candidates: []api.CandidateBook{
				{Title: "Wren's Oath", Author: "M. Hale"},
			},
		},
	}

	out = m.View()
	for _, want := range []string{
		"friendship and magic",
		"Thinking...",
		"index unavailable",
		"Wren's Oath",
		"M. Hale",
		"2019",
		"online",
		"http://127.0.0.1:8000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.recording = true
	out = m.View()
	if !strings.Contains(out, "Recording") {
		t.Error("recording state should be rendered")
	}
}
