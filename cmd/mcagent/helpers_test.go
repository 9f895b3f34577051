package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// fakeTaskStore is an in-memory task store API.
type fakeTaskStore struct {
	mu       sync.Mutex
	tasks    string
	claim    map[string]string
	failPUT  bool
	requests []string
}

func (f *fakeTaskStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tasks":
		_, _ = w.Write([]byte(f.tasks))
	case r.Method == http.MethodGet:
		body, ok := f.claim[strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")]
		if !ok {
			body = `{}`
		}
		_, _ = w.Write([]byte(body))
	case r.Method == http.MethodPut && f.failPUT:
		w.WriteHeader(http.StatusBadGateway)
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeTaskStore) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// setupWorkspace points the CLI at srv and a fresh sessions directory, and
// isolates it from the caller's config and environment.
func setupWorkspace(t *testing.T, srv *httptest.Server) (sessionsDir string) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "MC_") {
			t.Setenv(k, "")
		}
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	sessionsDir = t.TempDir()
	t.Setenv("MC_SESSIONS_DIR", sessionsDir)
	if srv != nil {
		t.Setenv("MC_API_URL", srv.URL)
	}
	return sessionsDir
}

func writeTranscript(t *testing.T, dir, name string, assistant ...string) string {
	t.Helper()
	var sb strings.Builder
	for _, text := range assistant {
		line, err := json.Marshal(map[string]any{
			"type":    "message",
			"message": map[string]any{"role": "assistant", "content": text},
		})
		require.NoError(t, err)
		sb.Write(line)
		sb.WriteByte('\n')
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(sb.String()), 0o644))
	return p
}

func runCommand(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig writes .mcagent.yaml into the current directory.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(".mcagent.yaml", []byte(content), 0o644))
}
