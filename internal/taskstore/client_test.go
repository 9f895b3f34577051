package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/missioncontrol/mcagent/internal/models"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	RequestURI  string
	ContentType string
	RequestID   string
	Body        string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		requests = append(requests, recordedRequest{
			Method:      r.Method,
			RequestURI:  r.RequestURI,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-ID"),
			Body:        string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c, &requests
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestListTasks(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"tasks":[{"id":"T1","title":"Check disks","status":"InProgress","sessionKey":"mission-control:T1"}]}`)

	tasks, err := c.ListTasks(context.Background(), models.TaskStatusInProgress, "clawdbot")
	require.NoError(t, err)
	require.Equal(t, []models.Task{{ID: "T1", Title: "Check disks", Status: models.TaskStatusInProgress, SessionKey: "mission-control:T1"}}, tasks)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	require.Equal(t, http.MethodGet, got.Method)
	require.Equal(t, "/api/v1/tasks?status=InProgress&assignee=clawdbot", got.RequestURI)
	require.NotEmpty(t, got.RequestID)
}

func TestListTasks_MissingTasksField(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{}`)

	tasks, err := c.ListTasks(context.Background(), models.TaskStatusInProgress, "clawdbot")
	require.NoError(t, err)
	require.NotNil(t, tasks)
	require.Empty(t, tasks)
}

func TestUpdateResults(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, ``)

	err := c.UpdateResults(context.Background(), "T1", "Disk usage at 92%.")
	require.NoError(t, err)

	got := (*reqs)[0]
	require.Equal(t, http.MethodPatch, got.Method)
	require.Equal(t, "/api/v1/tasks/T1", got.RequestURI)
	require.Equal(t, "application/json", got.ContentType)
	require.JSONEq(t, `{"results":"Disk usage at 92%."}`, got.Body)
}

func TestMoveTask(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusNoContent, ``)

	err := c.MoveTask(context.Background(), "T1", models.TaskStatusReview)
	require.NoError(t, err)

	got := (*reqs)[0]
	require.Equal(t, http.MethodPut, got.Method)
	require.Equal(t, "/api/v1/tasks/T1/move", got.RequestURI)
	require.JSONEq(t, `{"status":"Review"}`, got.Body)
}

func TestClaimEndpoints(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"task":{"id":"T9","title":"Rotate keys","status":"InProgress"},"action":"claimed"}`)

	resp, err := c.ReadyForWork(context.Background(), "mc:1712345678901", "clawdbot")
	require.NoError(t, err)
	require.True(t, resp.Claimed())
	require.Equal(t, "T9", resp.Task.ID)

	_, err = c.Orphaned(context.Background(), "mc:1712345678901", "clawdbot")
	require.NoError(t, err)

	require.Equal(t, "/api/v1/tasks/ready-for-work?sessionKey=mc:1712345678901&assignee=clawdbot", (*reqs)[0].RequestURI)
	require.Equal(t, "/api/v1/tasks/orphaned?sessionKey=mc:1712345678901&assignee=clawdbot", (*reqs)[1].RequestURI)
}

func TestClaimResponse_Claimed(t *testing.T) {
	var nilResp *ClaimResponse
	require.False(t, nilResp.Claimed())
	require.False(t, (&ClaimResponse{Action: ActionClaimed}).Claimed())
	require.False(t, (&ClaimResponse{Task: &models.Task{ID: "T1"}, Action: "none"}).Claimed())
	require.True(t, (&ClaimResponse{Task: &models.Task{ID: "T1"}, Action: ActionClaimed}).Claimed())
}

func TestNon2xxIsTransportError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusBadGateway, `{"error":"upstream"}`)

	err := c.UpdateResults(context.Background(), "T1", "x")
	require.Error(t, err)
	require.True(t, IsTransportError(err))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, http.StatusBadGateway, te.StatusCode)
	require.Equal(t, "update task results", te.Op)
	require.Contains(t, err.Error(), "502")
}

func TestUnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), models.TaskStatusInProgress, "clawdbot")
	require.True(t, IsTransportError(err))
}

func TestMalformedResponseIsTransportError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `<html>`)

	_, err := c.ListTasks(context.Background(), models.TaskStatusInProgress, "clawdbot")
	require.True(t, IsTransportError(err))
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ListTasksResponse{})
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, RateLimit: 0.001})
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), models.TaskStatusInProgress, "a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ListTasks(ctx, models.TaskStatusInProgress, "a")
	require.Error(t, err)
}

func TestQuery(t *testing.T) {
	require.Equal(t, "sessionKey=mc:1&assignee=a%26b", query("sessionKey", "mc:1", "assignee", "a&b"))
}
