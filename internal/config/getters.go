package config

import (
	"strconv"

	"golang.org/x/text/language"
)

// Value returns the display form of a field by its TOML key.
func (c *Config) Value(field string) (string, bool) {
	switch field {
	case "vault_dir":
		return c.VaultDir, true
	case "selection_file":
		return c.SelectionFile, true
	case "log_dir":
		return c.LogDir, true
	case "debounce_ms":
		return strconv.Itoa(c.DebounceMS), true
	case "locale":
		return c.Locale, true
	case "scan_workers":
		return strconv.Itoa(c.ScanWorkers), true
	case "journal":
		return strconv.FormatBool(c.Journal), true
	case "log_level":
		return c.LogLevel, true
	case "log_format":
		return c.LogFormat, true
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps), true
	case "log_caller":
		return strconv.FormatBool(c.LogCaller), true
	}
	return "", false
}

// LocaleTag returns the collation locale. Unparseable values fall back to
// the root locale.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
