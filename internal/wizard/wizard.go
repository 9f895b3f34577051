// Package wizard collects the settings for a new .mcagent.yaml with an
// interactive form.
package wizard

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/missioncontrol/mcagent/internal/config"
	"golang.org/x/term"
)

// Answers holds the fields collected by the form.
type Answers struct {
	APIURL      string
	Assignee    string
	Backend     string
	SessionsDir string
	AccountURL  string
	Container   string
	RunLog      bool
}

// AnswersFrom pre-populates the form from cfg.
func AnswersFrom(cfg *config.Config) Answers {
	return Answers{
		APIURL:      cfg.API.URL,
		Assignee:    cfg.API.Assignee,
		Backend:     cfg.Transcripts.Backend,
		SessionsDir: cfg.Transcripts.Dir,
		AccountURL:  cfg.Transcripts.Blob.AccountURL,
		Container:   cfg.Transcripts.Blob.Container,
		RunLog:      cfg.RunLogEnabled(),
	}
}

// Apply validates a and writes it onto cfg.
func (a Answers) Apply(cfg *config.Config) error {
	if err := ValidateURL(a.APIURL); err != nil {
		return fmt.Errorf("task store URL: %w", err)
	}
	if strings.TrimSpace(a.Assignee) == "" {
		return fmt.Errorf("assignee is required")
	}

	cfg.API.URL = strings.TrimSpace(a.APIURL)
	cfg.API.Assignee = strings.TrimSpace(a.Assignee)
	cfg.Transcripts.Backend = a.Backend
	cfg.RunLog.Enabled = &a.RunLog

	switch a.Backend {
	case config.BackendDir:
		cfg.Transcripts.Dir = strings.TrimSpace(a.SessionsDir)
	case config.BackendBlob:
		if err := ValidateURL(a.AccountURL); err != nil {
			return fmt.Errorf("storage account URL: %w", err)
		}
		if strings.TrimSpace(a.Container) == "" {
			return fmt.Errorf("container is required for the blob backend")
		}
		cfg.Transcripts.Blob.AccountURL = strings.TrimSpace(a.AccountURL)
		cfg.Transcripts.Blob.Container = strings.TrimSpace(a.Container)
	default:
		return fmt.Errorf("unknown transcript backend %q", a.Backend)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must start with http:// or https://", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

// RunConfigWizard runs an interactive huh form seeded from defaults and
// returns the resulting config.
func RunConfigWizard(in io.Reader, out io.Writer, defaults *config.Config) (*config.Config, error) {
	a := AnswersFrom(defaults)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task store URL").
				Description("Base URL of the Mission Control API").
				Value(&a.APIURL).
				Validate(ValidateURL),
			huh.NewInput().
				Title("Assignee").
				Description("Agent identity used when fetching and claiming tasks").
				Value(&a.Assignee).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("assignee is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Transcript storage").
				Options(
					huh.NewOption("Local directory", config.BackendDir),
					huh.NewOption("Azure Blob Storage", config.BackendBlob),
				).
				Value(&a.Backend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sessions directory").
				Description("Where sub-agent transcripts (*.jsonl) are written").
				Value(&a.SessionsDir),
		).WithHideFunc(func() bool { return a.Backend != config.BackendDir }),
		huh.NewGroup(
			huh.NewInput().
				Title("Storage account URL").
				Placeholder("https://<account>.blob.core.windows.net").
				Value(&a.AccountURL).
				Validate(ValidateURL),
			huh.NewInput().
				Title("Container").
				Value(&a.Container),
		).WithHideFunc(func() bool { return a.Backend != config.BackendBlob }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Record run logs?").
				Value(&a.RunLog),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	cfg := *defaults
	if err := a.Apply(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
