package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nibzard/taskbase/internal/checkbox"
	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/logging"
	"github.com/nibzard/taskbase/internal/selection"
	"github.com/nibzard/taskbase/internal/utils"
	"github.com/nibzard/taskbase/internal/vault"
	"github.com/nibzard/taskbase/internal/view"
)

// openVault indexes the configured vault.
func (a *app) openVault(ctx context.Context) (*vault.Index, error) {
	idx, err := vault.Open(ctx, a.cfg.VaultDir,
		vault.WithWorkers(a.cfg.ScanWorkers),
		vault.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("indexing vault %s: %w", a.cfg.VaultDir, err)
	}
	a.logger.Debug("vault indexed", "root", idx.Root(), "pages", idx.Len())
	return idx, nil
}

func (a *app) mutator(idx *vault.Index) *checkbox.Mutator {
	return checkbox.New(checkbox.NewFileStore(idx.Root()), checkbox.WithLogger(a.logger))
}

func (a *app) viewOptions(j *logging.Journal) []view.Option {
	opts := []view.Option{
		view.WithDebounce(a.cfg.Debounce()),
		view.WithLocale(a.cfg.LocaleTag()),
		view.WithLogger(a.logger),
	}
	if j != nil {
		opts = append(opts, view.WithJournal(j))
	}
	return opts
}

// listCommand runs one render pass and prints the grouped tree.
func (a *app) listCommand(ctx context.Context, args []string) error {
	fs := a.subFlags("list")
	asJSON := fs.Bool("json", false, "Print the groups as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := a.selectionArg(fs.Args())
	if err != nil {
		return err
	}

	idx, err := a.openVault(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()
	j := a.openJournal("list")
	defer j.Close()

	ctrl, err := view.Open(idx, a.mutator(idx), path, a.viewOptions(j)...)
	if err != nil {
		return fmt.Errorf("loading selection %s: %w", path, err)
	}
	defer ctrl.Close()

	s, err := ctrl.Refresh(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Groups)
	}
	return view.Render(a.stdout, s)
}

// toggleCommand flips each listed line of one document, in order.
func (a *app) toggleCommand(ctx context.Context, args []string) error {
	fs := a.subFlags("toggle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.editCommand(ctx, "toggle", fs.Args(), func(ctrl *view.Controller, rs []engine.Result) []error {
		return ctrl.ToggleBatch(ctx, rs)
	})
}

// setStatusCommand marks each listed line complete or incomplete. Lines
// already in that state are left untouched.
func (a *app) setStatusCommand(ctx context.Context, name string, completed bool, args []string) error {
	fs := a.subFlags(name)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.editCommand(ctx, name, fs.Args(), func(ctrl *view.Controller, rs []engine.Result) []error {
		errs := make([]error, len(rs))
		for i, r := range rs {
			errs[i] = ctrl.SetStatus(ctx, r, completed)
		}
		return errs
	})
}

func (a *app) editCommand(ctx context.Context, name string, args []string, apply func(*view.Controller, []engine.Result) []error) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: taskbase %s <path> <line>...", name)
	}
	lines := make([]int, 0, len(args)-1)
	for _, s := range args[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", s, err)
		}
		lines = append(lines, n)
	}

	idx, err := a.openVault(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	rel, err := a.documentPath(idx.Root(), args[0])
	if err != nil {
		return err
	}

	j := a.openJournal(name)
	defer j.Close()
	ctrl := view.New(idx, a.mutator(idx), selection.Default(), a.viewOptions(j)...)
	defer ctrl.Close()

	targets := lookupItems(idx, rel, lines)
	errs := apply(ctrl, targets)

	failed := 0
	for i, r := range targets {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(a.stderr, "%s:%d: %v\n", r.Path, r.Line, errs[i])
			continue
		}
		current := r
		if updated, ok := lookupItem(idx, r.Path, r.Line); ok {
			current = updated
		}
		fmt.Fprintf(a.stdout, "%s %s  %s:%d\n", view.Marker(current), current.Text, current.Path, current.Line)
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d items failed", name, failed, len(targets))
	}
	return nil
}

// documentPath maps a command-line path to the vault-relative document key.
// Paths that exist relative to the working directory win over vault-relative
// ones.
func (a *app) documentPath(root, arg string) (string, error) {
	candidate := arg
	if !filepath.IsAbs(candidate) {
		if _, err := os.Stat(candidate); err == nil {
			if abs, err := filepath.Abs(candidate); err == nil {
				candidate = abs
			}
		}
	}
	rel, ok := utils.VaultPath(root, candidate)
	if !ok {
		return "", fmt.Errorf("%s is outside the vault %s", arg, root)
	}
	return rel, nil
}

// lookupItems returns the indexed record for each line. Lines the index does
// not know become bare records so the mutator reports the precise failure.
func lookupItems(idx *vault.Index, rel string, lines []int) []engine.Result {
	out := make([]engine.Result, len(lines))
	for i, line := range lines {
		r, ok := lookupItem(idx, rel, line)
		if !ok {
			r = engine.Result{Path: rel, Line: line, ParentLine: -1}
		}
		out[i] = r
	}
	return out
}

func lookupItem(idx *vault.Index, rel string, line int) (engine.Result, bool) {
	page, ok := idx.Page(rel)
	if !ok {
		return engine.Result{}, false
	}
	for _, it := range page.Items {
		if it.Line == line {
			return it.Result(), true
		}
	}
	return engine.Result{}, false
}
