package completion

//go:generate go tool mockgen -source store.go -destination mock_task_store_test.go -package completion

import (
	"context"

	"github.com/missioncontrol/mcagent/internal/models"
)

// TaskStore is the subset of the task store API the coordinator needs.
// *taskstore.Client satisfies it.
type TaskStore interface {
	ListTasks(ctx context.Context, status models.TaskStatus, assignee string) ([]models.Task, error)
	UpdateResults(ctx context.Context, taskID, results string) error
	MoveTask(ctx context.Context, taskID string, status models.TaskStatus) error
}
