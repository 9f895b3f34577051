package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/missioncontrol/mcagent/internal/taskstore"
	"github.com/missioncontrol/mcagent/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	mu       sync.Mutex
	tasks    string
	requests []string
	bodies   []string
}

func (f *fakeTaskStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body) //nolint:errcheck
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.RequestURI)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(f.tasks))
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func TestRun_AgainstHTTPTaskStore(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "a-T1.jsonl", "Understood, starting now.")
	writeTranscript(t, dir, "b-T1.jsonl", "HEARTBEAT_OK", "## Findings\nDisk usage at 92%.")

	fake := &fakeTaskStore{tasks: `{"tasks":[
		{"id":"T1","title":"Check disks","status":"InProgress","sessionKey":"mission-control:T1"},
		{"id":"T2","title":"Reviewed","status":"Review","sessionKey":"mission-control:T2"},
		{"id":"T3","title":"Manual","status":"InProgress"},
		{"id":"T4","title":"No transcript","status":"InProgress","sessionKey":"mission-control:T4"}
	]}`}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := taskstore.New(taskstore.Options{BaseURL: srv.URL, Logger: quietLog})
	require.NoError(t, err)

	c := New(client, transcript.NewDirStore(dir, quietLog), testRun, WithLogger(quietLog))
	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Empty(t, report.Failed())

	assert.Equal(t, []string{
		"GET /api/v1/tasks?status=InProgress&assignee=clawdbot",
		"PATCH /api/v1/tasks/T1",
		"PUT /api/v1/tasks/T1/move",
		"PATCH /api/v1/tasks/T4",
		"PUT /api/v1/tasks/T4/move",
	}, fake.requests)

	var patch struct {
		Results string `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[1]), &patch))
	assert.Equal(t, "Disk usage at 92%.", patch.Results)
	assert.JSONEq(t, `{"status":"Review"}`, fake.bodies[2])

	require.NoError(t, json.Unmarshal([]byte(fake.bodies[3]), &patch))
	assert.Equal(t, DefaultSummary, patch.Results)
}

func TestRun_HTTPMoveFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"tasks":[{"id":"T1","title":"Check disks","status":"InProgress","sessionKey":"mission-control:T1"}]}`))
		case http.MethodPut:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := taskstore.New(taskstore.Options{BaseURL: srv.URL, Logger: quietLog})
	require.NoError(t, err)

	report, err := New(client, transcript.NewDirStore(t.TempDir(), quietLog), testRun, WithLogger(quietLog)).Run(context.Background())
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	var partial *PartialCompletionError
	require.ErrorAs(t, failed[0].Err, &partial)
	assert.True(t, taskstore.IsTransportError(failed[0].Err))
}
