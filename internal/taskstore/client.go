// Package taskstore is the HTTP/JSON client for the Mission Control task
// store. Request paths and query layouts match the server exactly.
package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/missioncontrol/mcagent/internal/models"
	"golang.org/x/time/rate"
)

const (
	tasksPath = "/api/v1/tasks"

	// DefaultTimeout bounds every request when Options.Timeout is unset.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 10 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the task store.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client for the task store at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("task store URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid task store URL %q: %w", opts.BaseURL, err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL: base,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c, nil
}

// ListTasks returns the tasks in status assigned to assignee.
func (c *Client) ListTasks(ctx context.Context, status models.TaskStatus, assignee string) ([]models.Task, error) {
	target := tasksPath + "?" + query("status", string(status), "assignee", assignee)

	var resp ListTasksResponse
	if err := c.do(ctx, "list tasks", http.MethodGet, target, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []models.Task{}, nil
	}
	return resp.Tasks, nil
}

// UpdateResults patches the results field of a task.
func (c *Client) UpdateResults(ctx context.Context, taskID, results string) error {
	target := tasksPath + "/" + url.PathEscape(taskID)
	return c.do(ctx, "update task results", http.MethodPatch, target, UpdateResultsRequest{Results: results}, nil)
}

// MoveTask transitions a task to status.
func (c *Client) MoveTask(ctx context.Context, taskID string, status models.TaskStatus) error {
	target := tasksPath + "/" + url.PathEscape(taskID) + "/move"
	return c.do(ctx, "move task", http.MethodPut, target, MoveRequest{Status: status}, nil)
}

// ReadyForWork asks the store to claim a Ready task for assignee.
func (c *Client) ReadyForWork(ctx context.Context, sessionKey, assignee string) (*ClaimResponse, error) {
	return c.claim(ctx, "poll ready tasks", "/ready-for-work", sessionKey, assignee)
}

// Orphaned asks the store to claim an InProgress task whose session is gone.
func (c *Client) Orphaned(ctx context.Context, sessionKey, assignee string) (*ClaimResponse, error) {
	return c.claim(ctx, "poll orphaned tasks", "/orphaned", sessionKey, assignee)
}

func (c *Client) claim(ctx context.Context, op, suffix, sessionKey, assignee string) (*ClaimResponse, error) {
	target := tasksPath + suffix + "?" + query("sessionKey", sessionKey, "assignee", assignee)

	var resp ClaimResponse
	if err := c.do(ctx, op, http.MethodGet, target, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	fullURL := c.baseURL + target
	fail := func(err error) error {
		return &TransportError{Op: op, Method: method, URL: fullURL, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.logger.Debug("task store request",
		"op", op,
		"method", method,
		"url", fullURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &TransportError{
			Op:         op,
			Method:     method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fail(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// query builds a query string preserving key order. Values are escaped,
// except ':' which the session keys use and the server expects verbatim.
func query(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(pairs[i+1]), "%3A", ":"))
	}
	return b.String()
}
