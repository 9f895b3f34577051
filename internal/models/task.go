package models

import "strings"

// TaskStatus is the lifecycle state of a task in the task store.
type TaskStatus string

const (
	TaskStatusReady      TaskStatus = "Ready"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusDone       TaskStatus = "Done"
)

// LabelNamespace prefixes every session label handed to a sub-agent.
const LabelNamespace = "mission-control"

// Task is a unit of work owned by the remote task store. This program only
// reads tasks and patches Results/Status.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	SessionKey string     `json:"sessionKey,omitempty"`
	Results    string     `json:"results,omitempty"`
}

// HasLabel reports whether the task's session key carries the
// mission-control namespace marker.
func (t Task) HasLabel() bool {
	return strings.Contains(t.SessionKey, LabelNamespace)
}

// EligibleForCompletion reports whether the task may be harvested and moved
// to Review: it must still be InProgress and carry a session label.
func (t Task) EligibleForCompletion() bool {
	return t.Status == TaskStatusInProgress && t.HasLabel()
}

// SessionLabel correlates a task with the sub-agent run working on it.
// The canonical form is "mission-control:<taskId>".
type SessionLabel string

// NewSessionLabel returns the label a sub-agent is spawned with for taskID.
func NewSessionLabel(taskID string) SessionLabel {
	return SessionLabel(LabelNamespace + ":" + taskID)
}

// TaskID returns the task id portion of the label. Only the first
// "mission-control:" occurrence is removed; anything else is kept as-is.
func (l SessionLabel) TaskID() string {
	return strings.Replace(string(l), LabelNamespace+":", "", 1)
}

func (l SessionLabel) String() string {
	return string(l)
}
