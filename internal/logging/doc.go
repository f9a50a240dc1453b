// Package logging provides the console logger and the activity journal.
//
// The console logger is charmbracelet/log configured from application
// settings. The journal writes one JSONL file per run under
// <log_dir>/<project-slug>/ and can be listed and tailed afterwards.
package logging
