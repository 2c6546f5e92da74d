// Package graph talks to the Microsoft Graph REST API: site lists, drive
// items and workbook sessions.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// APIError is a non-2xx Graph response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Graph HTTP %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("Graph HTTP %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	siteID  string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another Graph root, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a client for siteID authenticated by ts. A nil ts sends
// unauthenticated requests.
func New(ts oauth2.TokenSource, siteID string, opts ...Option) *Client {
	h := &http.Client{Timeout: 60 * time.Second}
	if ts != nil {
		h = oauth2.NewClient(context.Background(), ts)
		h.Timeout = 60 * time.Second
	}
	c := &Client{baseURL: DefaultBaseURL, siteID: siteID, http: h}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) sitePath(format string, args ...any) string {
	return "/sites/" + url.PathEscape(c.siteID) + fmt.Sprintf(format, args...)
}

// do sends one request. path is relative to the base URL unless it is
// absolute (nextLink). in is JSON-encoded when not nil; out is decoded when
// not nil.
func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, 25<<20))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json decode error: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
