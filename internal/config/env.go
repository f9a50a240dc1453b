package config

import (
	"os"
	"strconv"

	"github.com/nibzard/taskbase/internal/utils"
)

// envVar binds one environment variable to a config field. set reports
// whether the value was applied.
type envVar struct {
	name  string
	field string
	set   func(cfg *Config, v string) bool
}

func envString(dst func(*Config) *string) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		*dst(cfg) = v
		return true
	}
}

func envInt(dst func(*Config) *int) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		i, err := strconv.Atoi(v)
		if err != nil {
			return false
		}
		*dst(cfg) = i
		return true
	}
}

func envBool(dst func(*Config) *bool) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		*dst(cfg) = utils.BoolFromString(v)
		return true
	}
}

var envVars = []envVar{
	{"TASKBASE_VAULT", "vault_dir", envString(func(c *Config) *string { return &c.VaultDir })},
	{"TASKBASE_SELECTION", "selection_file", envString(func(c *Config) *string { return &c.SelectionFile })},
	{"TASKBASE_LOG_DIR", "log_dir", envString(func(c *Config) *string { return &c.LogDir })},
	{"TASKBASE_DEBOUNCE_MS", "debounce_ms", envInt(func(c *Config) *int { return &c.DebounceMS })},
	{"TASKBASE_LOCALE", "locale", envString(func(c *Config) *string { return &c.Locale })},
	{"TASKBASE_SCAN_WORKERS", "scan_workers", envInt(func(c *Config) *int { return &c.ScanWorkers })},
	{"TASKBASE_JOURNAL", "journal", envBool(func(c *Config) *bool { return &c.Journal })},
	{"TASKBASE_LOG_LEVEL", "log_level", envString(func(c *Config) *string { return &c.LogLevel })},
	{"TASKBASE_LOG_FORMAT", "log_format", envString(func(c *Config) *string { return &c.LogFormat })},
	{"TASKBASE_LOG_TIMESTAMPS", "log_timestamps", envBool(func(c *Config) *bool { return &c.LogTimestamps })},
	{"TASKBASE_LOG_CALLER", "log_caller", envBool(func(c *Config) *bool { return &c.LogCaller })},
}

// loadFromEnv overrides config from TASKBASE_* environment variables. Empty
// variables are ignored, as are integers that do not parse.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, ev := range envVars {
		v := os.Getenv(ev.name)
		if v == "" {
			continue
		}
		if ev.set(cfg, v) && sources != nil {
			sources[ev.field] = SourceEnv
		}
	}
}
