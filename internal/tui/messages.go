package tui

import "github.com/kmorrow/librarian/internal/session"

// vmMsg carries a fresh ViewModel snapshot after a controller change.
type vmMsg struct {
	VM session.ViewModel
}

// captureFinishedMsg is sent when one voice-capture lifecycle completes.
type captureFinishedMsg struct{}

// intentDoneMsg reports whether a dispatched intent was accepted or dropped.
type intentDoneMsg struct {
	Accepted bool
}
