// Package transcript locates and reads sub-agent session transcripts.
//
// A transcript is newline-delimited JSON, one entry per line, written by the
// sub-agent process and never modified afterwards. Transcripts may be stored
// plain (.jsonl) or compressed (.jsonl.gz, .jsonl.zst).
package transcript

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/missioncontrol/mcagent/internal/models"
)

// Recognized transcript file extensions.
const (
	ExtJSONL     = ".jsonl"
	ExtJSONLGzip = ".jsonl.gz"
	ExtJSONLZstd = ".jsonl.zst"
)

// ErrNoTranscript is returned when no transcript matches a session label.
var ErrNoTranscript = errors.New("no transcript found")

// Store maps session labels to transcript identifiers and opens them.
// Implementations are read-only.
type Store interface {
	// Locate returns the identifiers of every transcript whose name contains
	// the task id of label, sorted ascending. A missing backing store yields
	// an empty result, not an error.
	Locate(ctx context.Context, label models.SessionLabel) ([]string, error)
	// Open returns the raw (possibly compressed) transcript stream.
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// Transcript is the parsed content of one transcript record.
type Transcript struct {
	ID      string
	Entries []models.TranscriptEntry
	// Skipped counts lines that could not be parsed.
	Skipped int
}

// IsTranscriptName reports whether name carries a transcript extension.
func IsTranscriptName(name string) bool {
	return strings.HasSuffix(name, ExtJSONL) ||
		strings.HasSuffix(name, ExtJSONLGzip) ||
		strings.HasSuffix(name, ExtJSONLZstd)
}

// Matches reports whether the transcript called name belongs to taskID.
// Matching is by substring, so one id that is a prefix of another can
// produce false positives.
func Matches(name, taskID string) bool {
	if taskID == "" {
		return false
	}
	return IsTranscriptName(name) && strings.Contains(path.Base(name), taskID)
}

// Latest picks the lexicographically last identifier. Identifiers embed
// sortable timestamps, so this approximates the most recent run.
func Latest(ids []string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	return slices.Max(ids), true
}

// FindLatest locates the transcripts for label and returns the most recent
// one along with the number of candidates. It returns ErrNoTranscript when
// nothing matches.
func FindLatest(ctx context.Context, store Store, label models.SessionLabel) (string, int, error) {
	ids, err := store.Locate(ctx, label)
	if err != nil {
		return "", 0, fmt.Errorf("locating transcripts for %s: %w", label, err)
	}
	latest, ok := Latest(ids)
	if !ok {
		return "", 0, ErrNoTranscript
	}
	return latest, len(ids), nil
}

// Load opens the transcript id from store and parses it.
func Load(ctx context.Context, store Store, id string) (*Transcript, error) {
	rc, err := store.Open(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", id, err)
	}
	defer rc.Close() //nolint:errcheck

	r, closeFn, err := decompress(id, rc)
	if err != nil {
		return nil, fmt.Errorf("decompressing transcript %s: %w", id, err)
	}
	defer closeFn()

	entries, skipped, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript %s: %w", id, err)
	}
	return &Transcript{ID: id, Entries: entries, Skipped: skipped}, nil
}

// Read parses newline-delimited transcript entries from r. Blank lines are
// ignored and lines that are not valid JSON objects are skipped and counted;
// only an I/O failure of r aborts the read.
func Read(r io.Reader) ([]models.TranscriptEntry, int, error) {
	var (
		entries []models.TranscriptEntry
		skipped int
	)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var entry models.TranscriptEntry
			if jsonErr := json.Unmarshal(line, &entry); jsonErr != nil {
				skipped++
			} else {
				entries = append(entries, entry)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, skipped, err
		}
	}

	return entries, skipped, nil
}

func decompress(id string, r io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(id, ExtJSONLGzip):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case strings.HasSuffix(id, ExtJSONLZstd):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}
