package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// envPrefix marks the environment variables read by applyEnv.
const envPrefix = "MC_"

// envOverrides lists the environment variables that take precedence over
// the config file. Unset variables leave the config untouched.
type envOverrides struct {
	APIURL      string        `mapstructure:"MC_API_URL"`
	Assignee    string        `mapstructure:"MC_ASSIGNEE"`
	Timeout     time.Duration `mapstructure:"MC_TIMEOUT"`
	SessionsDir string        `mapstructure:"MC_SESSIONS_DIR"`
	Backend     string        `mapstructure:"MC_TRANSCRIPT_BACKEND"`
	AccountURL  string        `mapstructure:"MC_BLOB_ACCOUNT_URL"`
	Container   string        `mapstructure:"MC_BLOB_CONTAINER"`
	RunLog      *bool         `mapstructure:"MC_RUN_LOG"`
}

// applyEnv decodes MC_* entries of environ ("KEY=value" pairs) onto cfg.
func applyEnv(cfg *Config, environ []string) error {
	vars := make(map[string]any)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) || v == "" {
			continue
		}
		vars[k] = v
	}
	if len(vars) == 0 {
		return nil
	}

	var env envOverrides
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &env,
	})
	if err != nil {
		return fmt.Errorf("creating environment decoder: %w", err)
	}
	if err := dec.Decode(vars); err != nil {
		return fmt.Errorf("decoding %s* environment: %w", envPrefix, err)
	}

	if env.APIURL != "" {
		cfg.API.URL = env.APIURL
	}
	if env.Assignee != "" {
		cfg.API.Assignee = env.Assignee
	}
	if env.Timeout != 0 {
		cfg.API.Timeout = env.Timeout
	}
	if env.SessionsDir != "" {
		cfg.Transcripts.Dir = env.SessionsDir
	}
	if env.Backend != "" {
		cfg.Transcripts.Backend = env.Backend
	}
	if env.AccountURL != "" {
		cfg.Transcripts.Blob.AccountURL = env.AccountURL
	}
	if env.Container != "" {
		cfg.Transcripts.Blob.Container = env.Container
	}
	if env.RunLog != nil {
		cfg.RunLog.Enabled = env.RunLog
	}
	return nil
}
