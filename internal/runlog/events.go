package runlog

import "time"

// EventType identifies the kind of run event.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventRunEnd       EventType = "run_complete"
	EventTaskSkipped  EventType = "task_skipped"
	EventTaskComplete EventType = "task_complete"
	EventTaskFailed   EventType = "task_failed"
	EventClaim        EventType = "claim"
	EventError        EventType = "error"
)

// Event is a single timestamped entry in a run log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for the start of a run.
func RunStartData(command, sessionKey, assignee string) map[string]any {
	return map[string]any{
		"command":     command,
		"session_key": sessionKey,
		"assignee":    assignee,
	}
}

// RunCompleteData returns event data for the end of a completion run.
func RunCompleteData(fetched, processed, failed int, durationMs int64) map[string]any {
	return map[string]any{
		"fetched":     fetched,
		"processed":   processed,
		"failed":      failed,
		"duration_ms": durationMs,
	}
}

// TaskSkippedData returns event data for a task left untouched.
func TaskSkippedData(taskID, reason string) map[string]any {
	return map[string]any{
		"task_id": taskID,
		"reason":  reason,
	}
}

// TaskCompleteData returns event data for a task moved to Review.
func TaskCompleteData(taskID, title, source, strategy string, chars int) map[string]any {
	return map[string]any{
		"task_id":  taskID,
		"title":    title,
		"source":   source,
		"strategy": strategy,
		"chars":    chars,
	}
}

// TaskFailedData returns event data for a task whose completion failed.
// phase is "results" or "move".
func TaskFailedData(taskID, title, phase, message string) map[string]any {
	return map[string]any{
		"task_id": taskID,
		"title":   title,
		"phase":   phase,
		"message": message,
	}
}

// ClaimData returns event data for a claim poll that found work.
func ClaimData(taskID, title, source string) map[string]any {
	return map[string]any{
		"task_id": taskID,
		"title":   title,
		"source":  source,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
