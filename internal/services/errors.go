package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/tripx/internal/shared"
)

// APIError is a non-2xx response translated for display.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto a shared sentinel.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	case http.StatusForbidden:
		return shared.ErrForbidden
	case http.StatusNotFound:
		return shared.ErrNotFound
	default:
		return shared.ErrAPIRequest
	}
}

// newAPIError reads the error body best-effort.
//
// FastAPI reports either {"detail": "text"} or, for validation failures,
// {"detail": [{"msg": "..."}, ...]}. Anything else falls back to the given message.
func newAPIError(resp *APIResponse, fallback string) *APIError {
	return &APIError{StatusCode: resp.StatusCode, Message: detailMessage(resp.Body, fallback)}
}

func detailMessage(body []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
		return fallback
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallback
}

// call issues the request and decodes a 2xx body into out when out is non-nil.
func call(ctx context.Context, r Requester, path string, opts RequestOpts, fallback string, out any) error {
	resp, err := r.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return newAPIError(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, fallback, err)
	}
	return nil
}
