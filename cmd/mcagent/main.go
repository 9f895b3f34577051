package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Run finished and every task was handled
	ExitTaskFailed = 1 // One or more tasks failed to complete
	ExitError      = 2 // Configuration or runtime error
)

// TaskFailureError indicates that the batch ran to the end but one or more
// tasks could not be moved to Review.
type TaskFailureError struct {
	Message string
}

func (e *TaskFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var taskFailureErr *TaskFailureError
	if errors.As(err, &taskFailureErr) {
		return ExitTaskFailed
	}
	return ExitError
}
