package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/missioncontrol/mcagent/internal/config"
	"github.com/missioncontrol/mcagent/internal/models"
	"github.com/missioncontrol/mcagent/internal/runlog"
	"github.com/missioncontrol/mcagent/internal/taskstore"
	"github.com/missioncontrol/mcagent/internal/transcript"
)

// app bundles the configuration and clients shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadApp() (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// newRun starts a new run identity. Session keys are never reused.
func (a *app) newRun() models.RunContext {
	return models.NewRunContext(a.cfg.API.Assignee, time.Now())
}

func (a *app) taskStore() (*taskstore.Client, error) {
	return taskstore.New(taskstore.Options{
		BaseURL:   a.cfg.API.URL,
		Timeout:   a.cfg.API.Timeout,
		RateLimit: a.cfg.API.RateLimit,
		Logger:    a.logger,
	})
}

func (a *app) transcriptStore() (transcript.Store, error) {
	switch a.cfg.Transcripts.Backend {
	case config.BackendDir, "":
		return transcript.NewDirStore(a.cfg.Transcripts.Dir, a.logger), nil
	case config.BackendBlob:
		blob := a.cfg.Transcripts.Blob
		store, err := transcript.NewBlobStore(transcript.BlobStoreOptions{
			AccountURL: blob.AccountURL,
			Container:  blob.Container,
			Prefix:     blob.Prefix,
			Logger:     a.logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown transcript backend %q", a.cfg.Transcripts.Backend)
	}
}

// openRunLog returns the run log for this invocation. It is a NopLogger
// unless force is set or the config enables run logging.
func (a *app) openRunLog(force bool) (runlog.Logger, error) {
	if !force && !a.cfg.RunLogEnabled() {
		return runlog.NopLogger{}, nil
	}
	l, err := runlog.NewJSONLogger(runlog.DefaultLogPath(a.cfg.RunLog.Dir, time.Now()))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("writing run log", "path", l.Path())
	return l, nil
}
