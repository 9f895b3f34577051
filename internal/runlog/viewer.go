package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const runLogSuffix = "-run.jsonl"

// RunFile represents a run log file on disk.
type RunFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListRuns finds run log files in dir, newest first.
func ListRuns(dir string) ([]RunFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run log directory: %w", err)
	}

	var files []RunFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), runLogSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		n, _ := countLines(path) //nolint:errcheck
		files = append(files, RunFile{
			Path:      path,
			Name:      e.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: n,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// ReadEvents parses all events from a run log file.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	// Increase buffer for large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // skip malformed lines
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable run timeline to w.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " RUN TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		ts := formatDuration(ev.Timestamp.Sub(start))

		switch ev.Type {
		case EventRunStart:
			command, _ := ev.Data["command"].(string)        //nolint:errcheck
			sessionKey, _ := ev.Data["session_key"].(string) //nolint:errcheck
			assignee, _ := ev.Data["assignee"].(string)      //nolint:errcheck
			fmt.Fprintf(w, "[%s] 🚀 Run started  command=%s  session=%s  assignee=%s\n", ts, command, sessionKey, assignee)

		case EventTaskSkipped:
			id, _ := ev.Data["task_id"].(string)    //nolint:errcheck
			reason, _ := ev.Data["reason"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ⏭  Skipped %s: %s\n", ts, id, reason)

		case EventTaskComplete:
			id, _ := ev.Data["task_id"].(string)    //nolint:errcheck
			title, _ := ev.Data["title"].(string)   //nolint:errcheck
			source, _ := ev.Data["source"].(string) //nolint:errcheck
			chars := jsonNumber(ev.Data["chars"])
			fmt.Fprintf(w, "[%s] ✓  %s moved to Review: %s [%s, %d chars]\n", ts, id, title, source, chars)

		case EventTaskFailed:
			id, _ := ev.Data["task_id"].(string)  //nolint:errcheck
			phase, _ := ev.Data["phase"].(string) //nolint:errcheck
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ✗  %s failed during %s: %s\n", ts, id, phase, msg)

		case EventClaim:
			id, _ := ev.Data["task_id"].(string)    //nolint:errcheck
			title, _ := ev.Data["title"].(string)   //nolint:errcheck
			source, _ := ev.Data["source"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] 📥 Claimed %s task %s: %s\n", ts, source, id, title)

		case EventError:
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, msg)

		case EventRunEnd:
			fetched := jsonNumber(ev.Data["fetched"])
			processed := jsonNumber(ev.Data["processed"])
			failed := jsonNumber(ev.Data["failed"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] 🏁 Run complete  %d processed of %d fetched  %d failed  (%dms)\n",
				ts, processed, fetched, failed, dur)

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

// jsonNumber extracts a number from a JSON-decoded interface{} (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}
