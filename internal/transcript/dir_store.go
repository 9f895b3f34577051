package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/missioncontrol/mcagent/internal/models"
)

var _ Store = (*DirStore)(nil)

// DirStore finds transcripts in a flat directory of session files.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

// NewDirStore creates a DirStore over dir. A nil logger uses slog.Default().
func NewDirStore(dir string, logger *slog.Logger) *DirStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirStore{dir: dir, logger: logger}
}

// Dir returns the directory being scanned.
func (s *DirStore) Dir() string {
	return s.dir
}

// Locate returns the full paths of matching transcript files, sorted.
func (s *DirStore) Locate(_ context.Context, label models.SessionLabel) ([]string, error) {
	if s.dir == "" {
		s.logger.Warn("sessions directory not configured")
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("sessions directory not found", "dir", s.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	taskID := label.TaskID()
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !Matches(e.Name(), taskID) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}

	slices.Sort(paths)
	return paths, nil
}

// Open opens a transcript by the path Locate returned.
func (s *DirStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	return os.Open(id)
}
