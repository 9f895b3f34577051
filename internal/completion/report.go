package completion

import "github.com/missioncontrol/mcagent/internal/summary"

// Outcome is what happened to a single task during a run.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeResultsFailed Outcome = "results_failed"
	OutcomeMoveFailed    Outcome = "move_failed"
	OutcomeDryRun        Outcome = "dry_run"
)

// Source says where a task's results text came from.
type Source string

const (
	SourceTranscript Source = "transcript"
	SourceDefault    Source = "default"
)

// TaskReport describes the handling of one fetched task.
type TaskReport struct {
	TaskID  string
	Title   string
	Outcome Outcome
	// Reason is set for skipped tasks.
	Reason       string
	Source       Source
	Strategy     summary.Strategy
	Transcript   string
	Summary      string
	SummaryChars int
	Err          error
}

// Phase returns the completion phase that failed, or "" when none did.
func (r TaskReport) Phase() string {
	switch r.Outcome {
	case OutcomeResultsFailed:
		return PhaseResults
	case OutcomeMoveFailed:
		return PhaseMove
	}
	return ""
}

// Report summarizes a completion run.
type Report struct {
	// Fetched is the number of InProgress tasks returned by the store.
	Fetched int
	// Processed counts eligible tasks, whatever their outcome.
	Processed int
	Tasks     []TaskReport
	// FetchErr is set when the pending list could not be fetched. The run
	// is then empty, not failed.
	FetchErr error
}

// Failed returns the reports of tasks whose completion failed in either phase.
func (r *Report) Failed() []TaskReport {
	var failed []TaskReport
	for _, t := range r.Tasks {
		if t.Outcome == OutcomeResultsFailed || t.Outcome == OutcomeMoveFailed {
			failed = append(failed, t)
		}
	}
	return failed
}
