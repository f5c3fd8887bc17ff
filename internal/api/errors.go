package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnreachable indicates the health probe could not confirm the service.
	ErrUnreachable = errors.New("recommendation service unreachable")
	// ErrNoTranscript indicates transcription succeeded but produced no text.
	ErrNoTranscript = errors.New("transcription returned no text")
)

// StatusError is a non-2xx service response normalized to a displayable message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// statusError builds a StatusError from a failed response, preferring the
// structured {detail} body over the bare transport status.
func statusError(resp *http.Response) *StatusError {
	message := fmt.Sprintf("HTTP %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(body) > 0 {
		var fail struct {
			Detail string `json:"detail"`
		}
		if jsonErr := json.Unmarshal(body, &fail); jsonErr == nil && strings.TrimSpace(fail.Detail) != "" {
			message = strings.TrimSpace(fail.Detail)
		}
	}

	return &StatusError{Status: resp.StatusCode, Message: message}
}

// rawStatusError is like statusError for endpoints that fail with plain text.
func rawStatusError(resp *http.Response) *StatusError {
	message := fmt.Sprintf("HTTP %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && strings.TrimSpace(string(body)) != "" {
		message = strings.TrimSpace(string(body))
	}

	return &StatusError{Status: resp.StatusCode, Message: message}
}
