package models

import (
	"fmt"
	"time"
)

// SessionKeyPrefix is the namespace of per-run session keys sent to the
// claim endpoints.
const SessionKeyPrefix = "mc"

// RunContext carries the per-invocation identity used by the claim and
// completion calls. It is created once at process start and passed
// explicitly; session keys are never reused across runs.
type RunContext struct {
	SessionKey string
	Assignee   string
	StartedAt  time.Time
}

// NewRunContext builds a RunContext whose session key is "mc:<unix-millis>".
func NewRunContext(assignee string, now time.Time) RunContext {
	return RunContext{
		SessionKey: fmt.Sprintf("%s:%d", SessionKeyPrefix, now.UnixMilli()),
		Assignee:   assignee,
		StartedAt:  now,
	}
}
