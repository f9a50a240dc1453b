package config

import (
	"github.com/spf13/pflag"
)

// flagFields maps flag names to the config field they set.
var flagFields = map[string]string{
	"vault":          "vault_dir",
	"selection":      "selection_file",
	"log-dir":        "log_dir",
	"debounce-ms":    "debounce_ms",
	"locale":         "locale",
	"workers":        "scan_workers",
	"journal":        "journal",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// RegisterFlags defines the global flags on fs, bound to cfg's current
// values.
func RegisterFlags(cfg *Config, fs *pflag.FlagSet) {
	fs.StringVarP(&cfg.VaultDir, "vault", "C", cfg.VaultDir, "Vault directory to index")
	fs.StringVarP(&cfg.SelectionFile, "selection", "s", cfg.SelectionFile, "Selection file")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.IntVar(&cfg.DebounceMS, "debounce-ms", cfg.DebounceMS, "Refresh debounce interval in milliseconds")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used to sort file names (BCP 47 tag)")
	fs.IntVar(&cfg.ScanWorkers, "workers", cfg.ScanWorkers, "Files parsed concurrently while indexing")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "Record activity to the JSONL journal")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
}

// parseFlags defines and parses the global flags. Only flags that were set
// on the command line change cfg.
func parseFlags(cfg *Config, fs *pflag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = pflag.NewFlagSet("taskbase", pflag.ContinueOnError)
	}
	RegisterFlags(cfg, fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *pflag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
