package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskbase configuration file
# Values can be overridden by TASKBASE_* environment variables or CLI flags

# Markdown vault to index (relative to the working directory)
vault_dir = "."

# Default selection file for list, watch and tui
selection_file = "tasks.json"

# Journal directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.taskbase"

# Quiet period before refreshing after the vault changes
debounce_ms = 500

# Locale for sorting file names; "und" is the root collation
locale = "und"

# Files parsed concurrently while indexing
scan_workers = 4

# Record renders and toggles to a JSONL journal
journal = true

# Console logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
