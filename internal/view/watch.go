package view

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nibzard/taskbase/internal/debounce"
)

type selectionWatch struct {
	watcher   *fsnotify.Watcher
	debouncer *debounce.Debouncer
	done      chan struct{}
	wg        sync.WaitGroup
}

func (w *selectionWatch) stop() {
	w.debouncer.Stop()
	close(w.done)
	w.watcher.Close()
	w.wg.Wait()
}

// WatchSelection reloads the selection file whenever it changes on disk.
// The directory is watched rather than the file so editors that replace
// the file on save keep triggering reloads. Close stops the watch.
func (c *Controller) WatchSelection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("controller closed")
	}
	if c.selPath == "" {
		return fmt.Errorf("no selection file")
	}
	if c.selWatch != nil {
		return nil
	}

	abs, err := filepath.Abs(c.selPath)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch selection: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch selection: %w", err)
	}

	w := &selectionWatch{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	w.debouncer = debounce.New(c.interval, func() {
		if _, err := c.ReloadSelection(ctx); err != nil {
			c.logger.Warn("selection reload failed", "path", c.selPath, "err", err)
		}
	}, c.debOpts...)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.debouncer.Trigger()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("selection watch error", "err", err)
			}
		}
	}()
	c.selWatch = w
	return nil
}
