// Package api implements the typed HTTP client for the Smart Librarian service.
//
// Every call is a single attempt: requests are user-triggered, so re-invoking
// the action is the retry mechanism. Automatic retries would risk duplicate
// costly operations such as re-embedding the index or re-billing synthesis.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxQueryChars bounds the length of a recommendation query.
const MaxQueryChars = 500

// Client performs typed HTTP calls against one service origin.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// New constructs a client for the given base URL. A nil logger disables logging.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// BaseURL returns the configured service origin.
func (c *Client) BaseURL() string {
	return c.base
}

// Health probes GET /health once. Any failure maps to ErrUnreachable; the
// probe is advisory and never blocks other operations.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}

// Recommend submits a natural-language query and decodes the recommendation.
func (c *Client) Recommend(ctx context.Context, query string) (Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Recommendation{}, fmt.Errorf("query must not be empty")
	}
	if utf8.RuneCountInString(query) > MaxQueryChars {
		return Recommendation{}, fmt.Errorf("query exceeds %d characters", MaxQueryChars)
	}

	started := time.Now()
	var wire recommendationWire
	if err := c.postJSON(ctx, "/recommend", map[string]string{"query": query}, &wire); err != nil {
		return Recommendation{}, err
	}

	c.logger.Info("recommendation received",
		"title", wire.Title,
		"candidates", len(wire.Candidates),
		"latency_ms", time.Since(started).Milliseconds(),
	)
	return wire.toRecommendation(), nil
}

// Reindex asks the service to re-embed its dataset. No payload either way.
func (c *Client) Reindex(ctx context.Context) error {
	return c.postJSON(ctx, "/admin/reindex", nil, nil)
}

// Transcribe uploads captured audio as multipart field "file" and returns the
// recognized text. An empty payload is still uploaded; emptiness is the
// service's call to make.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="capture.wav"`)
	header.Set("Content-Type", mimeType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build transcription upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build transcription upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build transcription upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/stt", &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp)
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	if strings.TrimSpace(decoded.Text) == "" {
		return "", ErrNoTranscript
	}
	return decoded.Text, nil
}

// Synthesize converts text to audio with the given voice and returns the raw
// audio bytes. Failed synthesis responds with a plain-text message.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("synthesis text must not be empty")
	}
	if voice == "" {
		voice = "alloy"
	}

	payload, err := json.Marshal(map[string]string{"text": text, "voice": voice})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/tts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rawStatusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis audio: %w", err)
	}
	return audio, nil
}

// CoverURL returns the deterministic cover image URL for a title. Resolution
// failures degrade at the consumer; there is no failure path here.
func (c *Client) CoverURL(title string) string {
	return c.base + "/cover?title=" + url.QueryEscape(title)
}

// SummaryByTitle fetches the stored summary object for one known title.
func (c *Client) SummaryByTitle(ctx context.Context, title string) (Recommendation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Recommendation{}, fmt.Errorf("title must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/summary?title="+url.QueryEscape(title), nil)
	if err != nil {
		return Recommendation{}, fmt.Errorf("build summary request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Recommendation{}, fmt.Errorf("summary request failed: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Recommendation{}, statusError(resp)
	}

	var wire summaryWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Recommendation{}, fmt.Errorf("decode summary response: %w", err)
	}
	return wire.toRecommendation(), nil
}

// postJSON sends one JSON POST and optionally decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request for %s: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
	_ = body.Close()
}
