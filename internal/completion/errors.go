package completion

import "fmt"

// PartialCompletionError means the results were saved but the move to Review
// failed. The task is left InProgress with its results set and is picked up
// again by the next run.
type PartialCompletionError struct {
	TaskID string
	Err    error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("task %s: results saved but move to Review failed: %v", e.TaskID, e.Err)
}

func (e *PartialCompletionError) Unwrap() error {
	return e.Err
}
