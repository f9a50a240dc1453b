// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskbase/taskbase.toml or OS-specific config directory)
// 3. Project config file (taskbase.toml or .taskbase.toml in the working directory)
// 4. Environment variables (TASKBASE_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.taskbase/taskbase.toml (preferred)
// - Windows: %APPDATA%\taskbase\taskbase.toml
// - macOS: ~/Library/Application Support/taskbase/taskbase.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskbase/taskbase.toml or ~/.config/taskbase/taskbase.toml
package config
