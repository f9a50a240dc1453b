package config

import "time"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultVaultDir      = "."
	DefaultSelectionFile = "tasks.json"
	DefaultLogDir        = "~/.taskbase"
	DefaultDebounceMS    = 500
	DefaultLocale        = "und"
	DefaultScanWorkers   = 4
	DefaultJournal       = true
)

// Config holds the full configuration for taskbase.
type Config struct {
	// Paths
	VaultDir      string `toml:"vault_dir"`
	SelectionFile string `toml:"selection_file"`
	LogDir        string `toml:"log_dir"`

	// View behaviour
	DebounceMS int    `toml:"debounce_ms"`
	Locale     string `toml:"locale"`

	// Number of files parsed concurrently while building the vault index
	ScanWorkers int `toml:"scan_workers"`

	// Write a JSONL activity journal under LogDir
	Journal bool `toml:"journal"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Debounce returns the refresh debounce interval. Non-positive values fall
// back to the default.
func (c *Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.VaultDir = DefaultVaultDir
	cfg.SelectionFile = DefaultSelectionFile
	cfg.LogDir = DefaultLogDir
	cfg.DebounceMS = DefaultDebounceMS
	cfg.Locale = DefaultLocale
	cfg.ScanWorkers = DefaultScanWorkers
	cfg.Journal = DefaultJournal
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
}
