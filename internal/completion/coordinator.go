// Package completion harvests finished sub-agent work: for every InProgress
// task carrying a session label it summarizes the sub-agent transcript,
// stores the summary as the task's results and moves the task to Review.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"
	"unicode/utf8"

	"github.com/missioncontrol/mcagent/internal/metrics"
	"github.com/missioncontrol/mcagent/internal/models"
	"github.com/missioncontrol/mcagent/internal/runlog"
	"github.com/missioncontrol/mcagent/internal/summary"
	"github.com/missioncontrol/mcagent/internal/transcript"
)

// DefaultSummary is stored when no transcript exists or nothing could be
// extracted from it.
const DefaultSummary = "Sub-agent completed work. Please review changes."

// Completion phases, as reported in logs, metrics and the run log.
const (
	PhaseResults = "results"
	PhaseMove    = "move"
)

// Coordinator runs the completion batch against a task store.
type Coordinator struct {
	store       TaskStore
	transcripts transcript.Store
	run         models.RunContext

	logger  *slog.Logger
	runLog  runlog.Logger
	metrics *metrics.Metrics
	dryRun  bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRunLog records run events to l.
func WithRunLog(l runlog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.runLog = l
		}
	}
}

// WithMetrics records counters to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithDryRun makes Run locate and summarize without mutating any task.
func WithDryRun(dryRun bool) Option {
	return func(c *Coordinator) {
		c.dryRun = dryRun
	}
}

// New creates a Coordinator acting as run.Assignee.
func New(store TaskStore, transcripts transcript.Store, run models.RunContext, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		transcripts: transcripts,
		run:         run,
		logger:      slog.Default(),
		runLog:      runlog.NopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run fetches the assignee's InProgress tasks and completes every eligible
// one, in fetch order. A failed task does not stop the batch. The returned
// error is non-nil only when ctx is cancelled; per-task failures are in the
// report.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	c.event(runlog.EventRunStart, runlog.RunStartData("complete", c.run.SessionKey, c.run.Assignee))
	c.logger.Info("Starting post-process", "assignee", c.run.Assignee, "dry_run", c.dryRun)

	tasks, err := c.store.ListTasks(ctx, models.TaskStatusInProgress, c.run.Assignee)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.finish(report, start)
			return report, ctxErr
		}
		c.logger.Error("Error fetching tasks", "error", err)
		c.event(runlog.EventError, runlog.ErrorData(err.Error(), map[string]any{"op": "list tasks"}))
		report.FetchErr = err
		c.finish(report, start)
		return report, nil
	}
	report.Fetched = len(tasks)

	if len(tasks) == 0 {
		c.logger.Info("No tasks needing review")
		c.finish(report, start)
		return report, nil
	}
	c.logger.Info("Found InProgress tasks", "count", len(tasks))

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			c.finish(report, start)
			return report, err
		}
		tr := c.process(ctx, task)
		report.Tasks = append(report.Tasks, tr)
		if tr.Outcome != OutcomeSkipped {
			report.Processed++
		}
	}

	c.logger.Info("Post-process complete", "processed", report.Processed, "failed", len(report.Failed()))
	c.finish(report, start)
	return report, nil
}

// CompleteTask stores results on the task and then moves it to Review.
// When the first phase fails the second is not attempted. When only the
// second fails the error is a *PartialCompletionError.
func (c *Coordinator) CompleteTask(ctx context.Context, taskID, results string) error {
	if err := c.store.UpdateResults(ctx, taskID, results); err != nil {
		c.logger.Error("Failed to update task results", "task", taskID, "error", err)
		return fmt.Errorf("updating results of task %s: %w", taskID, err)
	}
	c.logger.Info("Updated task with results", "task", taskID, "chars", utf8.RuneCountInString(results))

	if err := c.store.MoveTask(ctx, taskID, models.TaskStatusReview); err != nil {
		c.logger.Error("Failed to move task to Review", "task", taskID, "error", err)
		return &PartialCompletionError{TaskID: taskID, Err: err}
	}
	c.logger.Info("Moved task to Review", "task", taskID)
	return nil
}

func (c *Coordinator) process(ctx context.Context, task models.Task) TaskReport {
	tr := TaskReport{TaskID: task.ID, Title: task.Title}

	if !task.EligibleForCompletion() {
		tr.Outcome = OutcomeSkipped
		tr.Reason = "no mission-control label"
		if task.Status != models.TaskStatusInProgress {
			tr.Reason = fmt.Sprintf("status is %s", task.Status)
		}
		c.logger.Info("Skipping task", "task", task.ID, "reason", tr.Reason)
		c.event(runlog.EventTaskSkipped, runlog.TaskSkippedData(task.ID, tr.Reason))
		c.metrics.TaskSkipped()
		return tr
	}

	c.logger.Info("Processing task", "task", task.ID, "title", task.Title, "session_key", task.SessionKey)
	c.summarize(ctx, models.SessionLabel(task.SessionKey), &tr)

	if c.dryRun {
		tr.Outcome = OutcomeDryRun
		return tr
	}

	err := c.CompleteTask(ctx, task.ID, tr.Summary)
	var partial *PartialCompletionError
	switch {
	case err == nil:
		tr.Outcome = OutcomeCompleted
		c.event(runlog.EventTaskComplete, runlog.TaskCompleteData(task.ID, task.Title, string(tr.Source), string(tr.Strategy), tr.SummaryChars))
		c.metrics.TaskCompleted(string(tr.Source), string(tr.Strategy))
		return tr
	case errors.As(err, &partial):
		tr.Outcome = OutcomeMoveFailed
	default:
		tr.Outcome = OutcomeResultsFailed
	}
	tr.Err = err
	c.event(runlog.EventTaskFailed, runlog.TaskFailedData(task.ID, task.Title, tr.Phase(), err.Error()))
	c.metrics.TaskFailed(tr.Phase())
	return tr
}

// summarize fills in the summary fields of tr. Any problem finding or reading
// the transcript falls back to DefaultSummary.
func (c *Coordinator) summarize(ctx context.Context, label models.SessionLabel, tr *TaskReport) {
	useDefault := func() {
		tr.Source = SourceDefault
		tr.Summary = DefaultSummary
		tr.SummaryChars = utf8.RuneCountInString(DefaultSummary)
	}

	id, candidates, err := transcript.FindLatest(ctx, c.transcripts, label)
	if errors.Is(err, transcript.ErrNoTranscript) {
		c.logger.Info("No transcript found", "session_key", label.String())
		useDefault()
		return
	}
	if err != nil {
		c.logger.Warn("Error locating transcripts, using default", "session_key", label.String(), "error", err)
		useDefault()
		return
	}
	c.logger.Info("Found transcript files", "count", candidates)
	c.logger.Info("Using transcript", "transcript", path.Base(id))
	tr.Transcript = id

	t, err := transcript.Load(ctx, c.transcripts, id)
	if err != nil {
		c.logger.Warn("Error reading transcript, using default", "transcript", id, "error", err)
		useDefault()
		return
	}
	if t.Skipped > 0 {
		c.logger.Debug("Skipped malformed transcript lines", "transcript", id, "count", t.Skipped)
	}

	res, ok := summary.Extract(t.Entries)
	if !ok {
		c.logger.Info("No summary found in transcript, using default")
		useDefault()
		return
	}

	tr.Source = SourceTranscript
	tr.Strategy = res.Strategy
	tr.Summary = res.Text
	tr.SummaryChars = utf8.RuneCountInString(res.Text)
	c.logger.Info("Extracted summary", "chars", tr.SummaryChars, "strategy", res.Strategy, "truncated", res.Truncated)
}

func (c *Coordinator) finish(report *Report, start time.Time) {
	elapsed := time.Since(start)
	c.event(runlog.EventRunEnd, runlog.RunCompleteData(report.Fetched, report.Processed, len(report.Failed()), elapsed.Milliseconds()))
	c.metrics.ObserveRun("complete", elapsed)
}

func (c *Coordinator) event(t runlog.EventType, data map[string]any) {
	if err := c.runLog.Log(runlog.NewEvent(t, data)); err != nil {
		c.logger.Warn("Failed to write run log event", "type", t, "error", err)
	}
}
