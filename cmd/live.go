package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskbase/internal/logging"
	"github.com/nibzard/taskbase/internal/ui"
	"github.com/nibzard/taskbase/internal/vault"
	"github.com/nibzard/taskbase/internal/view"
)

// liveView holds a watched vault and a started controller.
type liveView struct {
	path    string
	idx     *vault.Index
	ctrl    *view.Controller
	journal *logging.Journal
}

func (lv *liveView) Close() {
	lv.ctrl.Close()
	lv.idx.Close()
	lv.journal.Close()
}

// openLive indexes and watches the vault, then opens a controller over the
// selection file that also follows edits to that file. The caller registers
// listeners and then calls Start.
func (a *app) openLive(ctx context.Context, name string, args []string) (*liveView, error) {
	fs := a.subFlags(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	path, err := a.selectionArg(fs.Args())
	if err != nil {
		return nil, err
	}

	idx, err := a.openVault(ctx)
	if err != nil {
		return nil, err
	}
	if err := idx.Watch(ctx); err != nil {
		idx.Close()
		return nil, fmt.Errorf("watching vault: %w", err)
	}

	j := a.openJournal(name)
	ctrl, err := view.Open(idx, a.mutator(idx), path, a.viewOptions(j)...)
	if err != nil {
		idx.Close()
		j.Close()
		return nil, fmt.Errorf("loading selection %s: %w", path, err)
	}
	lv := &liveView{path: path, idx: idx, ctrl: ctrl, journal: j}
	if err := ctrl.WatchSelection(ctx); err != nil {
		lv.Close()
		return nil, fmt.Errorf("watching selection: %w", err)
	}
	return lv, nil
}

// watchCommand prints a fresh render after every debounced change until
// interrupted.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	lv, err := a.openLive(ctx, "watch", args)
	if err != nil {
		return err
	}
	defer lv.Close()

	var mu sync.Mutex
	lv.ctrl.OnChange(func(s view.State) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(a.stdout, "--- %s\n", s.UpdatedAt.Format(time.TimeOnly))
		if err := view.Render(a.stdout, s); err != nil {
			a.logger.Error("render failed", "err", err)
		}
	})
	lv.ctrl.Start(ctx)
	a.logger.Info("watching", "vault", lv.idx.Root())

	<-ctx.Done()
	return nil
}

// tuiCommand launches the interactive view.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	lv, err := a.openLive(ctx, "tui", args)
	if err != nil {
		return err
	}
	defer lv.Close()

	// console output would draw over the alternate screen; the journal
	// still records failures
	a.logger.SetLevel(log.FatalLevel)

	lv.ctrl.Start(ctx)
	return ui.RunTUI(ctx, lv.ctrl, "taskbase · "+filepath.Base(lv.path))
}
