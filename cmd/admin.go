package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nibzard/taskbase/internal/config"
	"github.com/nibzard/taskbase/internal/logging"
)

// tailCommand prints the latest journal, optionally following it.
func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := a.subFlags("tail")
	follow := fs.BoolP("follow", "f", false, "Follow the journal (like tail -f)")
	n := fs.IntP("lines", "n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List journal runs instead of printing one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		runs, err := logging.ListRuns(logDir)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(a.stdout, "No log files found.")
			return nil
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.RunID, r.ModTime.Format(time.DateTime), r.Size)
		}
		return tw.Flush()
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(a.stdout)
	return logging.TailLog(ctx, a.stdout, logPath, *n, *follow)
}

// configCommand prints the effective configuration with the source of each
// value, or an example file with --example.
func (a *app) configCommand(args []string) error {
	fs := a.subFlags("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(a.stdout, "# config file: %s\n", file)
	} else {
		fmt.Fprintln(a.stdout, "# no config file found")
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, e := range a.sources.Entries() {
		fmt.Fprintf(tw, "%s\t= %q\t(%s)\n", e.Field, e.Value, e.Source)
	}
	return tw.Flush()
}
