// Package session owns the client view model and serializes mutating intents
// behind one busy lock.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kmorrow/librarian/internal/api"
	"github.com/kmorrow/librarian/internal/capture"
)

// ViewModel is the single source of truth read by the presentation layer.
// Only this controller writes it; readers get copies via Snapshot.
type ViewModel struct {
	Query        string
	Busy         bool
	Error        string
	Result       *api.Recommendation
	ServerOnline bool
}

// Service is the remote surface the controller depends on.
type Service interface {
	Health(ctx context.Context) error
	Recommend(ctx context.Context, query string) (api.Recommendation, error)
	Reindex(ctx context.Context) error
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
	SummaryByTitle(ctx context.Context, title string) (api.Recommendation, error)
	CoverURL(title string) string
}

// Capturer runs one blocking voice-capture lifecycle.
type Capturer interface {
	Run(ctx context.Context) capture.Result
	RequestStop() error
	RequestCancel() error
}

// Player renders synthesized speech audio.
type Player interface {
	Play(ctx context.Context, wavData []byte) error
}

// Controller dispatches one logical operation at a time and merges all
// results and errors into the ViewModel.
type Controller struct {
	logger  *slog.Logger
	svc     Service
	capture Capturer
	player  Player
	voice   string

	mu sync.Mutex
	vm ViewModel

	playing  atomic.Bool
	onChange atomic.Pointer[func()]
}

// NewController constructs a session controller. voice selects the synthesis
// voice for listen.
func NewController(logger *slog.Logger, svc Service, capturer Capturer, player Player, voice string) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		logger:  logger,
		svc:     svc,
		capture: capturer,
		player:  player,
		voice:   voice,
	}
}

// SetOnChange registers a callback invoked after every ViewModel change.
func (c *Controller) SetOnChange(fn func()) {
	c.onChange.Store(&fn)
}

func (c *Controller) notify() {
	if fn := c.onChange.Load(); fn != nil {
		(*fn)()
	}
}

// Snapshot returns a copy of the current ViewModel.
func (c *Controller) Snapshot() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vm
}

// SetQuery updates the input text, bounded to the query length limit. Editing
// is not a mutating intent and is never rejected.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	c.vm.Query = truncateRunes(query, api.MaxQueryChars)
	c.mu.Unlock()
	c.notify()
}

// CoverURL resolves the deterministic cover image URL for a title. Read-only,
// unordered relative to everything else.
func (c *Controller) CoverURL(title string) string {
	return c.svc.CoverURL(title)
}

// RefreshHealth probes the service once and records reachability. Advisory:
// it never touches the busy lock and never blocks other operations.
func (c *Controller) RefreshHealth(ctx context.Context) {
	err := c.svc.Health(ctx)

	c.mu.Lock()
	c.vm.ServerOnline = err == nil
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Warn("health probe failed", "error", err.Error())
	}
}

// SubmitQuery sends the current query for a recommendation. Returns false when
// the intent is dropped (busy, or empty query); a true no-op either way.
func (c *Controller) SubmitQuery(ctx context.Context) bool {
	query := strings.TrimSpace(c.Snapshot().Query)
	if query == "" {
		return false
	}
	if !c.acquire(true) {
		return false
	}

	rec, err := c.svc.Recommend(ctx, query)
	if err != nil {
		c.logger.Error("recommendation failed", "error", err.Error())
		c.finish(err, nil)
		return true
	}

	c.finish(nil, func(vm *ViewModel) {
		vm.Result = &rec
	})
	return true
}

// Reindex asks the service to re-embed its dataset. Leaves query and result
// untouched.
func (c *Controller) Reindex(ctx context.Context) bool {
	if !c.acquire(false) {
		return false
	}

	if err := c.svc.Reindex(ctx); err != nil {
		c.logger.Error("reindex failed", "error", err.Error())
		c.finish(err, nil)
		return true
	}

	c.logger.Info("reindex complete")
	c.finish(nil, nil)
	return true
}

// StartCapture runs one voice-capture session to completion, writing the
// transcript into the query on success. Holds the busy lock for the whole
// lifecycle so no other mutating intent can interleave.
func (c *Controller) StartCapture(ctx context.Context) bool {
	if c.capture == nil {
		return false
	}
	if !c.acquire(false) {
		return false
	}

	result := c.capture.Run(ctx)
	switch {
	case result.Ignored, result.Cancelled:
		c.finish(nil, nil)
	case result.Err != nil:
		c.logger.Error("capture failed",
			"error", result.Err.Error(),
			"device", result.Device,
			"timed_out", result.TimedOut,
		)
		c.finish(result.Err, nil)
	default:
		c.logger.Info("capture complete",
			"device", result.Device,
			"bytes_captured", result.BytesCaptured,
			"transcript_length", len(result.Text),
			"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		)
		c.finish(nil, func(vm *ViewModel) {
			vm.Query = truncateRunes(strings.TrimSpace(result.Text), api.MaxQueryChars)
		})
	}
	return true
}

// StopCapture signals the active capture session to stop and transcribe.
// Not a mutating intent: it only nudges the capture state machine.
func (c *Controller) StopCapture() {
	if c.capture == nil {
		return
	}
	// A guard rejection just means there is nothing to stop.
	_ = c.capture.RequestStop()
}

// CancelCapture signals the active capture session to discard its audio.
func (c *Controller) CancelCapture() {
	if c.capture == nil {
		return
	}
	_ = c.capture.RequestCancel()
}

// Listen synthesizes speech for the current result and plays it. Guarded by
// its own playing flag, not the busy lock; a second intent while audio is
// playing is ignored until playback ends.
func (c *Controller) Listen(ctx context.Context) bool {
	if c.player == nil {
		return false
	}

	text := speechText(c.Snapshot().Result)
	if text == "" {
		return false
	}

	if !c.playing.CompareAndSwap(false, true) {
		return false
	}
	defer c.playing.Store(false)

	c.setError("")

	audio, err := c.svc.Synthesize(ctx, text, c.voice)
	if err != nil {
		c.logger.Error("speech synthesis failed", "error", err.Error())
		c.setError(err.Error())
		return true
	}

	if err := c.player.Play(ctx, audio); err != nil {
		c.logger.Error("speech playback failed", "error", err.Error())
		c.setError(err.Error())
	}
	return true
}

// LookupSummary loads the stored summary for a known title into the result.
func (c *Controller) LookupSummary(ctx context.Context, title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	if !c.acquire(true) {
		return false
	}

	rec, err := c.svc.SummaryByTitle(ctx, title)
	if err != nil {
		c.logger.Error("summary lookup failed", "title", title, "error", err.Error())
		c.finish(err, nil)
		return true
	}

	c.finish(nil, func(vm *ViewModel) {
		vm.Result = &rec
	})
	return true
}

// acquire claims the busy lock, clearing the error and optionally the result.
// Returns false when an operation is already in flight; the caller's intent is
// then dropped without any state change.
func (c *Controller) acquire(clearResult bool) bool {
	c.mu.Lock()
	if c.vm.Busy {
		c.mu.Unlock()
		return false
	}
	c.vm.Busy = true
	c.vm.Error = ""
	if clearResult {
		c.vm.Result = nil
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// finish releases the busy lock, recording either the failure message or the
// merged success. Exactly one of the two happens per accepted intent.
func (c *Controller) finish(err error, merge func(*ViewModel)) {
	c.mu.Lock()
	c.vm.Busy = false
	if err != nil {
		c.vm.Error = err.Error()
	} else if merge != nil {
		merge(&c.vm)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) setError(message string) {
	c.mu.Lock()
	c.vm.Error = message
	c.mu.Unlock()
	c.notify()
}

// speechText picks what listen should read aloud for a recommendation.
func speechText(rec *api.Recommendation) string {
	if rec == nil {
		return ""
	}
	if text := strings.TrimSpace(rec.Blurb); text != "" {
		return text
	}
	if text := strings.TrimSpace(rec.Summary); text != "" {
		return text
	}
	return strings.TrimSpace(rec.Title)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
