// Package client talks to a running focusforge worker over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/thebtf/focusforge/pkg/models"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 5 * time.Second

// ErrNotFound is returned when the worker reports 404.
var ErrNotFound = errors.New("not found")

// Health is the worker's /api/health payload.
type Health struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"activeSessions"`
	SSEClients     int    `json:"sseClients"`
}

// Client is a small typed wrapper over the worker API.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for the worker at baseURL, e.g. "http://127.0.0.1:37790".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// ForAddr creates a client for a host:port address.
func ForAddr(host string, port int) *Client {
	return New("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// BaseURL returns the worker URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health fetches the worker's health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/api/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// IsRunning reports whether a ready worker answers at the base URL.
func (c *Client) IsRunning(ctx context.Context) bool {
	h, err := c.Health(ctx)
	return err == nil && h.Status == "ready"
}

// Version returns the worker version, or "" if it cannot be determined.
func (c *Client) Version(ctx context.Context) string {
	var v struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, "/api/version", &v); err != nil {
		return ""
	}
	return v.Version
}

// ListSessions returns the most recent sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]models.Session, error) {
	var resp struct {
		Sessions []models.Session `json:"sessions"`
	}
	path := "/api/sessions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// Summary fetches the computed summary for a session.
func (c *Client) Summary(ctx context.Context, id string) (*models.ComputedSummary, error) {
	var sum models.ComputedSummary
	if err := c.getJSON(ctx, sessionPath(id, "summary"), &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// Journal fetches the markdown journal entry for a session.
func (c *Client) Journal(ctx context.Context, id string) (string, error) {
	body, err := c.get(ctx, sessionPath(id, "journal"))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Plan fetches the task plan for a session.
func (c *Client) Plan(ctx context.Context, id string) (*models.TaskPlan, error) {
	var plan models.TaskPlan
	if err := c.getJSON(ctx, sessionPath(id, "plan"), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func sessionPath(id, leaf string) string {
	return "/api/sessions/" + url.PathEscape(id) + "/" + leaf
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s: worker returned %d: %s", path, resp.StatusCode, errorMessage(body))
	}
	return body, nil
}

// errorMessage extracts {"error": "..."} from a worker error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
