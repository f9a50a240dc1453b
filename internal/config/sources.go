package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Fields returns the configurable field names in display order. The names
// match the TOML keys.
func Fields() []string {
	return []string{
		"vault_dir",
		"selection_file",
		"log_dir",
		"debounce_ms",
		"locale",
		"scan_workers",
		"journal",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Entry is one resolved field for display.
type Entry struct {
	Field  string
	Value  string
	Source ConfigSource
}

// Entries returns every field with its value and source, in Fields order.
func (cws *ConfigWithSources) Entries() []Entry {
	fields := Fields()
	out := make([]Entry, 0, len(fields))
	for _, field := range fields {
		value, _ := cws.Config.Value(field)
		source, ok := cws.Sources[field]
		if !ok {
			source = SourceDefault
		}
		out = append(out, Entry{Field: field, Value: value, Source: source})
	}
	return out
}

// GetConfigFile returns the highest priority config file that was read, or
// an empty string.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range []string{"taskbase.toml", ".taskbase.toml"} {
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			abs, err := filepath.Abs(name)
			if err != nil {
				return name
			}
			return abs
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.taskbase/taskbase.toml first, then falls back to the OS-specific
// config directory.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".taskbase", "taskbase.toml"))
	}
	if dir := osUserConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "taskbase", "taskbase.toml"))
	}
	for _, path := range candidates {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory, or an empty
// string if it cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}
