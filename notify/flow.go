// Package notify triggers the automation flow that tells the warehouse team
// about stock changes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"totem/logger"
)

var ErrNoURL = errors.New("URL flow non configurato")

// HTTPError is a non-2xx answer from the flow trigger.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Flow HTTP %d: %s", e.Status, e.Body)
}

// Flow posts JSON payloads to an HTTP-triggered flow.
type Flow struct {
	url    string
	client *http.Client
}

func NewFlow(url string) *Flow {
	return &Flow{url: strings.TrimSpace(url), client: &http.Client{Timeout: 30 * time.Second}}
}

// SetClient replaces the HTTP client, used by tests.
func (f *Flow) SetClient(c *http.Client) { f.client = c }

func (f *Flow) Configured() bool { return f != nil && f.url != "" }

// Invoke posts payload and decodes the JSON answer when there is one.
func (f *Flow) Invoke(ctx context.Context, payload any) (map[string]any, error) {
	if !f.Configured() {
		return nil, ErrNoURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send flow request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}
	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			logger.Debug("flow answer is not JSON", "error", err)
		}
	}
	return out, nil
}
