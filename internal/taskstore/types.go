package taskstore

import "github.com/missioncontrol/mcagent/internal/models"

// ActionClaimed is the claim endpoints' marker for a successful claim.
const ActionClaimed = "claimed"

// ListTasksResponse is the body of GET /api/v1/tasks.
type ListTasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// UpdateResultsRequest is the body of PATCH /api/v1/tasks/{id}.
type UpdateResultsRequest struct {
	Results string `json:"results"`
}

// MoveRequest is the body of PUT /api/v1/tasks/{id}/move.
type MoveRequest struct {
	Status models.TaskStatus `json:"status"`
}

// ClaimResponse is the body of the ready-for-work and orphaned endpoints.
type ClaimResponse struct {
	Task   *models.Task `json:"task,omitempty"`
	Action string       `json:"action,omitempty"`
}

// Claimed reports whether the response carries a task that was claimed for
// the caller.
func (r *ClaimResponse) Claimed() bool {
	return r != nil && r.Task != nil && r.Action == ActionClaimed
}
