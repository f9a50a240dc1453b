// Package cmd implements the CLI command structure for taskbase.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/nibzard/taskbase/internal/config"
	"github.com/nibzard/taskbase/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries the resolved configuration and output streams shared by every
// subcommand.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
}

// Run executes the taskbase CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("taskbase", pflag.ContinueOnError)
	// global flags stop at the subcommand name
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.BoolP("help", "h", false, "Show help")
	showVersion := fs.BoolP("version", "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a := &app{
		cfg:     cws.Config,
		sources: cws,
		stdout:  stdout,
		stderr:  stderr,
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	a.logger, err = newLogger(a.cfg, stderr)
	if err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	subcommand, remaining := remaining[0], remaining[1:]

	switch subcommand {
	case "query":
		return a.queryCommand(remaining)
	case "validate":
		return a.validateCommand(remaining)
	case "fmt":
		return a.fmtCommand(remaining)
	case "list", "ls":
		return a.listCommand(ctx, remaining)
	case "toggle":
		return a.toggleCommand(ctx, remaining)
	case "done":
		return a.setStatusCommand(ctx, "done", true, remaining)
	case "undo":
		return a.setStatusCommand(ctx, "undo", false, remaining)
	case "watch":
		return a.watchCommand(ctx, remaining)
	case "tui":
		return a.tuiCommand(ctx, remaining)
	case "tail":
		return a.tailCommand(ctx, remaining)
	case "config":
		return a.configCommand(remaining)
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newLogger builds the console logger from the logging settings.
func newLogger(cfg *config.Config, w io.Writer) (*log.Logger, error) {
	opts := logging.DefaultConsoleOptions()
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid log_format: %w", err)
	}
	opts.Level = level
	opts.Formatter = format
	opts.ReportTimestamp = cfg.LogTimestamps
	opts.ReportCaller = cfg.LogCaller
	return logging.NewConsoleLogger(w, opts), nil
}

// openJournal starts a journal run for command. It returns nil when the
// journal is disabled or cannot be created; Record and Close accept nil.
func (a *app) openJournal(command string) *logging.Journal {
	if !a.cfg.Journal {
		return nil
	}
	j, err := logging.NewJournal(a.cfg.LogDir, a.cfg.ProjectRoot)
	if err != nil {
		a.logger.Warn("journal disabled", "err", err)
		return nil
	}
	if err := j.Record(logging.Event{Type: logging.EventStart, Message: command}); err != nil {
		a.logger.Warn("journal write failed", "err", err)
	}
	a.logger.Debug("journal", "path", j.LogPath)
	return j
}

// subFlags returns a flag set for a subcommand that reports errors on the
// app's stderr.
func (a *app) subFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("taskbase "+name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// selectionArg returns the selection file named by args, falling back to
// the configured selection_file.
func (a *app) selectionArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		if a.cfg.SelectionFile == "" {
			return "", fmt.Errorf("no selection file given and selection_file is empty")
		}
		return a.cfg.SelectionFile, nil
	case 1:
		return args[0], nil
	}
	return "", fmt.Errorf("unexpected arguments: %v", args[1:])
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "taskbase version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskbase - live task views over a markdown vault")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskbase [global options] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  query [file]               Print the compiled query of a selection file")
	fmt.Fprintln(w, "  validate [file]            Check a selection file for errors")
	fmt.Fprintln(w, "  fmt [file]                 Print the canonical form (-w writes it back, --check verifies)")
	fmt.Fprintln(w, "  list [file]                Render the selection once (--json for machine output)")
	fmt.Fprintln(w, "  toggle <path> <line>...    Flip checklist items, lines as printed by list")
	fmt.Fprintln(w, "  done <path> <line>...      Mark checklist items complete")
	fmt.Fprintln(w, "  undo <path> <line>...      Mark checklist items incomplete")
	fmt.Fprintln(w, "  watch [file]               Re-render whenever the vault or selection changes")
	fmt.Fprintln(w, "  tui [file]                 Interactive view; space toggles the selected task")
	fmt.Fprintln(w, "  tail                       Show the latest activity journal (-f follows, -n N, --list)")
	fmt.Fprintln(w, "  config                     Show the effective configuration and its sources")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w, "  help                       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fmt.Fprint(w, fs.FlagUsages())
}
