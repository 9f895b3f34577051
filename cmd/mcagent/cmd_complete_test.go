package main

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pendingTasks = `{"tasks":[
	{"id":"T1","title":"Check disks","status":"InProgress","sessionKey":"mission-control:T1"},
	{"id":"T2","title":"Manual","status":"InProgress"}
]}`

func TestCompleteCommand(t *testing.T) {
	fake := &fakeTaskStore{tasks: pendingTasks}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	sessions := setupWorkspace(t, srv)
	writeTranscript(t, sessions, "run-T1.jsonl", "HEARTBEAT_OK", "## Findings\nDisk usage at 92%.")

	out, err := runCommand(newCompleteCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "Check disks")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "Post-process complete. Processed 1 task(s).")
	assert.Equal(t, []string{
		"GET /api/v1/tasks",
		"PATCH /api/v1/tasks/T1",
		"PUT /api/v1/tasks/T1/move",
	}, fake.Requests())
}

func TestCompleteCommand_DryRun(t *testing.T) {
	fake := &fakeTaskStore{tasks: pendingTasks}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	sessions := setupWorkspace(t, srv)
	writeTranscript(t, sessions, "run-T1.jsonl", "## Findings\nDisk usage at 92%.")

	out, err := runCommand(newCompleteCommand(), "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "Disk usage at 92%.")
	assert.Contains(t, out, "Post-process complete. Would process 1 task(s).")
	assert.Equal(t, []string{"GET /api/v1/tasks"}, fake.Requests())
}

func TestCompleteCommand_NoTasks(t *testing.T) {
	srv := httptest.NewServer(&fakeTaskStore{tasks: `{"tasks":[]}`})
	t.Cleanup(srv.Close)
	setupWorkspace(t, srv)

	out, err := runCommand(newCompleteCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks needing review")
}

func TestCompleteCommand_MoveFailureIsTaskFailure(t *testing.T) {
	srv := httptest.NewServer(&fakeTaskStore{tasks: pendingTasks, failPUT: true})
	t.Cleanup(srv.Close)
	setupWorkspace(t, srv)

	out, err := runCommand(newCompleteCommand())
	require.Error(t, err)

	var taskErr *TaskFailureError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, ExitTaskFailed, exitCode(err))
	assert.Contains(t, out, "move_failed")
}

func TestCompleteCommand_UnreachableStoreIsEmptyRun(t *testing.T) {
	srv := httptest.NewServer(&fakeTaskStore{})
	url := srv.URL
	srv.Close()
	setupWorkspace(t, nil)
	t.Setenv("MC_API_URL", url)

	out, err := runCommand(newCompleteCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Could not fetch tasks")
}

func TestCompleteCommand_WritesRunLog(t *testing.T) {
	srv := httptest.NewServer(&fakeTaskStore{tasks: pendingTasks})
	t.Cleanup(srv.Close)
	setupWorkspace(t, srv)
	runsDir := t.TempDir()
	t.Setenv("MC_RUN_LOG", "true")
	writeConfig(t, "run_log:\n  dir: "+runsDir+"\n")

	_, err := runCommand(newCompleteCommand())
	require.NoError(t, err)

	out, err := runCommand(newRunsListCommand(), "--dir", runsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "-run.jsonl")
}
