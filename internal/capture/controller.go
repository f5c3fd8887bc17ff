// Package capture coordinates one voice-capture lifecycle: device acquisition,
// chunk accumulation, auto-stop, and hand-off to transcription.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kmorrow/librarian/internal/audio"
	"github.com/kmorrow/librarian/internal/fsm"
)

// MaxDuration bounds one capture session regardless of explicit stop.
const MaxDuration = 15 * time.Second

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

var (
	// ErrDeviceUnavailable indicates the input device could not be acquired.
	ErrDeviceUnavailable = errors.New("microphone unavailable")
	// ErrTranscriberUnavailable indicates transcription wiring is missing.
	ErrTranscriberUnavailable = errors.New("transcription pipeline not configured")
)

// Recorder is the platform capture stream owned by one session. Stop must be
// idempotent; Chunks closes once the stream is released.
type Recorder interface {
	Stop() error
	Chunks() <-chan []byte
	Label() string
	BytesCaptured() int64
}

// RecorderFactory acquires exclusive access to the input device.
type RecorderFactory func(ctx context.Context) (Recorder, error)

// Transcriber turns the accumulated audio payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	State         fsm.State
	Text          string
	Cancelled     bool
	TimedOut      bool
	Ignored       bool
	Err           error
	Device        string
	BytesCaptured int64
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Controller drives the capture state machine and its side effects.
type Controller struct {
	logger      *slog.Logger
	newRecorder RecorderFactory
	transcribe  Transcriber
	maxDuration time.Duration

	mu    sync.RWMutex
	state fsm.State

	actions chan action
}

// NewController constructs a capture controller with safe default fallbacks.
func NewController(logger *slog.Logger, factory RecorderFactory, transcriber Transcriber) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if factory == nil {
		factory = func(ctx context.Context) (Recorder, error) {
			return nil, errors.New("no recorder factory configured")
		}
	}
	if transcriber == nil {
		transcriber = placeholderTranscriber{}
	}

	return &Controller{
		logger:      logger,
		newRecorder: factory,
		transcribe:  transcriber,
		maxDuration: MaxDuration,
		state:       fsm.StateIdle,
		actions:     make(chan action, 1),
	}
}

// State returns the current state machine snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// begin atomically discards a stale stop/cancel from an earlier session and
// claims the Idle state. Reports false when a session is already active.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, fsm.EventStart)
	if err != nil {
		return false
	}
	select {
	case <-c.actions:
	default:
	}
	c.state = next
	return true
}

// Run executes one capture lifecycle from start to idle. A start while a
// session is already active is an idempotent no-op, reported via Ignored.
func (c *Controller) Run(ctx context.Context) (result Result) {
	result = Result{StartedAt: time.Now()}

	if !c.begin() {
		result.State = c.State()
		result.Ignored = true
		result.FinishedAt = time.Now()
		return result
	}

	recorder, err := c.newRecorder(ctx)
	if err != nil {
		_ = c.transition(fsm.EventFail)
		result.State = c.State()
		result.Err = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		result.FinishedAt = time.Now()
		return result
	}
	result.Device = recorder.Label()

	// Release on every exit path. Recorder.Stop is idempotent, so the device
	// stream is released exactly once no matter which transition fires first.
	defer func() {
		_ = recorder.Stop()
		result.BytesCaptured = recorder.BytesCaptured()
		result.State = c.State()
		result.FinishedAt = time.Now()
	}()

	collected := make(chan []byte, 1)
	go func() {
		var payload []byte
		for chunk := range recorder.Chunks() {
			payload = append(payload, chunk...)
		}
		collected <- payload
	}()

	deadline := time.NewTimer(c.maxDuration)
	defer deadline.Stop()

	select {
	case <-ctx.Done():
		_ = c.transition(fsm.EventFail)
		result.Err = ctx.Err()
		return result
	case <-deadline.C:
		result.TimedOut = true
		c.finishStop(ctx, recorder, collected, &result)
		return result
	case a := <-c.actions:
		switch a {
		case actionCancel:
			_ = c.transition(fsm.EventCancel)
			result.Cancelled = true
			return result
		case actionStop:
			// Explicit stop wins; the deadline timer is dead from here on.
			deadline.Stop()
			c.finishStop(ctx, recorder, collected, &result)
			return result
		default:
			_ = c.transition(fsm.EventFail)
			result.Err = fmt.Errorf("unknown action %d", a)
			return result
		}
	}
}

// finishStop drains the final chunks and hands the payload to transcription.
// An empty payload is still uploaded; the service decides what emptiness means.
func (c *Controller) finishStop(ctx context.Context, recorder Recorder, collected <-chan []byte, result *Result) {
	if err := c.transition(fsm.EventStop); err != nil {
		_ = c.transition(fsm.EventFail)
		result.Err = err
		return
	}

	_ = recorder.Stop()
	payload := <-collected

	if err := c.transition(fsm.EventFlush); err != nil {
		_ = c.transition(fsm.EventFail)
		result.Err = err
		return
	}

	framed := audio.EncodePCM16WAV(payload, audio.CaptureSampleRate, 1)
	text, err := c.transcribe.Transcribe(ctx, framed, "audio/wav")
	if err != nil {
		_ = c.transition(fsm.EventFail)
		result.Err = err
		return
	}

	if err := c.transition(fsm.EventTranscribed); err != nil {
		result.Err = err
		return
	}
	result.Text = text

	c.logger.Info("capture transcribed",
		"device", recorder.Label(),
		"bytes_captured", recorder.BytesCaptured(),
		"transcript_length", len(text),
		"timed_out", result.TimedOut,
	)
}

// RequestStop enqueues a stop for the active session when state permits it.
func (c *Controller) RequestStop() error {
	state := c.State()
	if state != fsm.StateRecording {
		return fmt.Errorf("cannot stop from state %s", state)
	}

	select {
	case c.actions <- actionStop:
	default:
		// Stop already requested; the first one wins.
	}
	return nil
}

// RequestCancel enqueues a cancel for the active session when state permits it.
func (c *Controller) RequestCancel() error {
	state := c.State()
	if state != fsm.StateRecording {
		return fmt.Errorf("cannot cancel from state %s", state)
	}

	select {
	case c.actions <- actionCancel:
	default:
	}
	return nil
}

type placeholderTranscriber struct{}

func (placeholderTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "", ErrTranscriberUnavailable
}
