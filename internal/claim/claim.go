// Package claim asks the task store for work on behalf of a sub-agent
// runner and formats the spawn instructions for a claimed task.
package claim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/missioncontrol/mcagent/internal/metrics"
	"github.com/missioncontrol/mcagent/internal/models"
	"github.com/missioncontrol/mcagent/internal/runlog"
	"github.com/missioncontrol/mcagent/internal/taskstore"
)

// Source names the queue a task was claimed from.
type Source string

const (
	SourceReady    Source = "ready"
	SourceOrphaned Source = "orphaned"
)

// API is the part of the task store the poller needs.
// *taskstore.Client satisfies it.
type API interface {
	ReadyForWork(ctx context.Context, sessionKey, assignee string) (*taskstore.ClaimResponse, error)
	Orphaned(ctx context.Context, sessionKey, assignee string) (*taskstore.ClaimResponse, error)
}

// Claim is a task handed to this runner.
type Claim struct {
	Task   models.Task
	Source Source
}

// Options configures a Client.
type Options struct {
	Logger  *slog.Logger
	RunLog  runlog.Logger
	Metrics *metrics.Metrics
}

// Client polls the claim endpoints.
type Client struct {
	api     API
	logger  *slog.Logger
	runLog  runlog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a Client over api.
func NewClient(api API, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RunLog == nil {
		opts.RunLog = runlog.NopLogger{}
	}
	return &Client{api: api, logger: opts.Logger, runLog: opts.RunLog, metrics: opts.Metrics}
}

// Poll claims at most one task. Ready tasks are tried first; orphaned
// InProgress tasks only when no ready task was claimed. A nil Claim with a
// nil error means there is no work. A failing endpoint is logged and the
// next one is tried; the error is returned only when both fail.
func (c *Client) Poll(ctx context.Context, run models.RunContext) (*Claim, error) {
	start := time.Now()
	c.event(runlog.EventRunStart, runlog.RunStartData("poll", run.SessionKey, run.Assignee))
	defer func() {
		c.event(runlog.EventRunEnd, map[string]any{"duration_ms": time.Since(start).Milliseconds()})
		c.metrics.ObserveRun("poll", time.Since(start))
	}()

	var errs []error
	queues := []struct {
		source Source
		query  func(ctx context.Context, sessionKey, assignee string) (*taskstore.ClaimResponse, error)
	}{
		{SourceReady, c.api.ReadyForWork},
		{SourceOrphaned, c.api.Orphaned},
	}

	for _, q := range queues {
		c.logger.Info("Polling for tasks", "source", q.source, "session_key", run.SessionKey)
		resp, err := q.query(ctx, run.SessionKey, run.Assignee)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("Claim request failed", "source", q.source, "error", err)
			c.event(runlog.EventError, runlog.ErrorData(err.Error(), map[string]any{"source": string(q.source)}))
			errs = append(errs, err)
			continue
		}
		if !resp.Claimed() {
			continue
		}

		claim := &Claim{Task: *resp.Task, Source: q.source}
		c.logger.Info("Claimed task", "source", q.source, "task", claim.Task.ID, "title", claim.Task.Title)
		c.event(runlog.EventClaim, runlog.ClaimData(claim.Task.ID, claim.Task.Title, string(q.source)))
		c.metrics.Claimed(string(q.source))
		return claim, nil
	}

	if len(errs) == len(queues) {
		return nil, fmt.Errorf("polling for work: %w", errors.Join(errs...))
	}
	c.logger.Info("No work found")
	return nil, nil
}

func (c *Client) event(t runlog.EventType, data map[string]any) {
	if err := c.runLog.Log(runlog.NewEvent(t, data)); err != nil {
		c.logger.Warn("Failed to write run log event", "type", t, "error", err)
	}
}

// SpawnLabel is the session label the sub-agent for claim must be spawned
// with, so completion can find its transcript later.
func (cl *Claim) SpawnLabel() models.SessionLabel {
	return models.NewSessionLabel(cl.Task.ID)
}

// WriteInstructions prints the claimed task and the spawn call that hands it
// to a sub-agent.
//
//nolint:errcheck // display-only writes
func (cl *Claim) WriteInstructions(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== TASK FOUND ===")
	fmt.Fprintf(w, "ID: %s\n", cl.Task.ID)
	fmt.Fprintf(w, "Title: %s\n", cl.Task.Title)
	fmt.Fprintf(w, "Status: %s\n", cl.Task.Status)
	fmt.Fprintf(w, "Source: %s\n", cl.Source)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "To spawn sub-agent, run:")
	fmt.Fprintln(w, "sessions_spawn({")
	fmt.Fprintf(w, "  task: %q,\n", "Complete: "+cl.Task.Title)
	fmt.Fprintf(w, "  label: %q,\n", cl.SpawnLabel().String())
	fmt.Fprintln(w, `  cleanup: "delete"`)
	fmt.Fprintln(w, "})")
	fmt.Fprintln(w)
}
