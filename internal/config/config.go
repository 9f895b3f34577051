// Package config provides the Config struct and loader for .mcagent.yaml
// configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file searched for by Load.
const FileName = ".mcagent.yaml"

// Default values. New() references them and no other code should duplicate
// them.
const (
	DefaultAPIURL   = "http://192.168.1.84:3001"
	DefaultAssignee = "clawdbot"
	DefaultTimeout  = 30 * time.Second

	BackendDir  = "dir"
	BackendBlob = "blob"

	DefaultBackend     = BackendDir
	DefaultSessionsDir = "~/.clawdbot/agents/main/sessions"

	DefaultRunLogDir = "~/.mcagent/runs"

	DefaultWatchInterval = time.Minute
)

// maxSearchDepth bounds the walk up from the start directory.
const maxSearchDepth = 10

// APIConfig holds task store connection settings.
type APIConfig struct {
	URL       string        `yaml:"url,omitempty"`
	Assignee  string        `yaml:"assignee,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RateLimit float64       `yaml:"rate_limit,omitempty"`
}

// BlobConfig locates transcripts in Azure Blob Storage.
type BlobConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
}

// TranscriptsConfig selects the transcript backend.
type TranscriptsConfig struct {
	Backend string     `yaml:"backend,omitempty"`
	Dir     string     `yaml:"dir,omitempty"`
	Blob    BlobConfig `yaml:"blob,omitempty"`
}

// RunLogConfig controls the NDJSON run log.
type RunLogConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval,omitempty"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
}

// Config is the top-level configuration loaded from .mcagent.yaml.
type Config struct {
	API         APIConfig         `yaml:"api,omitempty"`
	Transcripts TranscriptsConfig `yaml:"transcripts,omitempty"`
	RunLog      RunLogConfig      `yaml:"run_log,omitempty"`
	Watch       WatchConfig       `yaml:"watch,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		API: APIConfig{
			URL:      DefaultAPIURL,
			Assignee: DefaultAssignee,
			Timeout:  DefaultTimeout,
		},
		Transcripts: TranscriptsConfig{
			Backend: DefaultBackend,
			Dir:     DefaultSessionsDir,
		},
		RunLog: RunLogConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultRunLogDir,
		},
		Watch: WatchConfig{
			Interval: DefaultWatchInterval,
		},
	}
}

// RunLogEnabled reports whether run logging is switched on.
func (c *Config) RunLogEnabled() bool {
	return c.RunLog.Enabled != nil && *c.RunLog.Enabled
}

// Load finds .mcagent.yaml by walking up from startDir (max 10 levels),
// merges it onto the defaults and applies MC_* environment overrides.
// If no config file is found the defaults are used. Real I/O errors are
// returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	p, data, err := Find(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.Path = p
	}

	if err := applyEnv(cfg, os.Environ()); err != nil {
		return nil, err
	}

	cfg.Transcripts.Dir, err = ExpandHome(cfg.Transcripts.Dir)
	if err != nil {
		return nil, err
	}
	cfg.RunLog.Dir, err = ExpandHome(cfg.RunLog.Dir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find walks up from dir looking for .mcagent.yaml and returns its path and
// contents. It returns os.ErrNotExist if no file is found.
func Find(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Marshal renders cfg as YAML, for writing a new config file.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	// API
	if src.API.URL != "" {
		dst.API.URL = src.API.URL
	}
	if src.API.Assignee != "" {
		dst.API.Assignee = src.API.Assignee
	}
	if src.API.Timeout != 0 {
		dst.API.Timeout = src.API.Timeout
	}
	if src.API.RateLimit != 0 {
		dst.API.RateLimit = src.API.RateLimit
	}

	// Transcripts
	if src.Transcripts.Backend != "" {
		dst.Transcripts.Backend = src.Transcripts.Backend
	}
	if src.Transcripts.Dir != "" {
		dst.Transcripts.Dir = src.Transcripts.Dir
	}
	if src.Transcripts.Blob.AccountURL != "" {
		dst.Transcripts.Blob.AccountURL = src.Transcripts.Blob.AccountURL
	}
	if src.Transcripts.Blob.Container != "" {
		dst.Transcripts.Blob.Container = src.Transcripts.Blob.Container
	}
	if src.Transcripts.Blob.Prefix != "" {
		dst.Transcripts.Blob.Prefix = src.Transcripts.Blob.Prefix
	}

	// Run log
	if src.RunLog.Enabled != nil {
		dst.RunLog.Enabled = src.RunLog.Enabled
	}
	if src.RunLog.Dir != "" {
		dst.RunLog.Dir = src.RunLog.Dir
	}

	// Watch
	if src.Watch.Interval != 0 {
		dst.Watch.Interval = src.Watch.Interval
	}
	if src.Watch.MetricsAddr != "" {
		dst.Watch.MetricsAddr = src.Watch.MetricsAddr
	}
}

func boolPtr(b bool) *bool {
	return &b
}
