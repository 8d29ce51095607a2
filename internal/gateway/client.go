// Package gateway is the thin client for the spreadsheet-backed remote
// catalog service. Fetches report real failures; pushes ride an opaque
// transport whose responses are not interpretable, so the only observable
// outcome of a push is a call-level network error. Every push is therefore
// optimistic: the local store stays the source of truth and the remote is
// an eventually consistent mirror.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/devnnex/vision-academy/internal/catalog"
)

// Action names accepted by the remote backend's mutation endpoint.
const (
	ActionAddVideo    = "add_video"
	ActionDeleteVideo = "delete_video"
	ActionAddCategory = "add_category"
	ActionAddFAQ      = "add_faq"
)

var (
	// ErrNotConfigured indicates no remote backend URL was supplied.
	ErrNotConfigured = errors.New("gateway: remote backend not configured")
	// ErrMalformedResponse indicates the backend returned something other
	// than the expected JSON array.
	ErrMalformedResponse = errors.New("gateway: malformed response")
)

// Client issues requests against one remote backend base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient builds a Client for the given base URL. An empty URL yields a
// client whose fetches fail with ErrNotConfigured and whose pushes are
// silent no-ops, matching an unconfigured backend.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return &Client{http: httpClient}, nil
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url %q: %w", rawURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// Configured reports whether a remote backend URL is present.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != nil
}

// FetchVideos retrieves the authoritative video list.
func (c *Client) FetchVideos(ctx context.Context) ([]catalog.Video, error) {
	var payload []catalog.Video
	if err := c.get(ctx, "get_videos", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// categoryRow mirrors one row of the backend's category sheet.
type categoryRow struct {
	Category string `json:"category"`
}

// FetchCategories retrieves the explicit category registry.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var rows []categoryRow
	if err := c.get(ctx, "get_categories", &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Category != "" {
			names = append(names, row.Category)
		}
	}
	return names, nil
}

// Push sends a mutation as a JSON POST body. The backend's response is not
// inspected beyond transport success; a nil return means only that the
// call itself did not fail.
func (c *Client) Push(ctx context.Context, action string, payload map[string]any) error {
	if !c.Configured() {
		return nil
	}
	body := map[string]any{"action": action}
	for key, value := range payload {
		body[key] = value
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gateway: encode %s payload: %w", action, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("gateway: create %s request: %w", action, err)
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("gateway: push %s: %w", action, err)
	}
	// Opaque transport: drain and ignore whatever came back.
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
	return nil
}

// PushDeleteVideo issues a delete through the query-parameter form the
// backend expects for removals.
func (c *Client) PushDeleteVideo(ctx context.Context, id string) error {
	if !c.Configured() {
		return nil
	}
	target := c.actionURL(ActionDeleteVideo)
	query := target.Query()
	query.Set("id", id)
	target.RawQuery = query.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), nil)
	if err != nil {
		return fmt.Errorf("gateway: create delete request: %w", err)
	}
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("gateway: push delete_video: %w", err)
	}
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, action string, dest any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	target := c.actionURL(action)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("gateway: create %s request: %w", action, err)
	}
	request.Header.Set("Accept", "application/json")
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("gateway: fetch %s: %w", action, err)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode >= 400 {
		return fmt.Errorf("gateway: %s returned status %d", action, response.StatusCode)
	}
	decoder := json.NewDecoder(response.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, action, err)
	}
	return nil
}

func (c *Client) actionURL(action string) *url.URL {
	target := *c.baseURL
	query := target.Query()
	query.Set("action", action)
	target.RawQuery = query.Encode()
	return &target
}
