package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/parallel"
	"github.com/nibzard/taskbase/internal/utils"
)

// Index is an in-memory engine.Engine over a directory of markdown files.
type Index struct {
	root    string
	workers int
	logger  *log.Logger
	now     func() time.Time

	mu    sync.RWMutex
	pages map[string]*Page
	ready bool

	readyObs  engine.Observers
	updateObs engine.Observers

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ engine.Engine = (*Index)(nil)

// Option configures an Index.
type Option func(*Index)

// WithWorkers bounds the number of files parsed concurrently during a scan.
func WithWorkers(n int) Option {
	return func(x *Index) {
		x.workers = n
	}
}

// WithLogger sets the logger for scan and watch reports.
func WithLogger(l *log.Logger) Option {
	return func(x *Index) {
		x.logger = l
	}
}

// WithClock replaces the clock used for date(today) and date(now).
func WithClock(now func() time.Time) Option {
	return func(x *Index) {
		x.now = now
	}
}

// New returns an empty, not yet ready Index over root. Relative roots are
// made absolute so watch events map back to document paths.
func New(root string, opts ...Option) *Index {
	x := &Index{
		root:    root,
		workers: 4,
		now:     time.Now,
		pages:   map[string]*Page{},
	}
	for _, opt := range opts {
		opt(x)
	}
	if abs, err := filepath.Abs(root); err == nil {
		x.root = abs
	}
	if x.logger == nil {
		x.logger = log.New(io.Discard)
	}
	return x
}

// Open builds an Index over root and runs the initial scan.
func Open(ctx context.Context, root string, opts ...Option) (*Index, error) {
	x := New(root, opts...)
	if err := x.Load(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// Root returns the vault directory.
func (x *Index) Root() string {
	return x.root
}

// Load scans every markdown file under the root, replaces the index, marks it
// ready and fires notifications. Unreadable or malformed files are logged
// and skipped.
func (x *Index) Load(ctx context.Context) error {
	info, err := os.Stat(x.root)
	if err != nil {
		return fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root %s is not a directory", x.root)
	}

	files, err := x.markdownFiles()
	if err != nil {
		return err
	}

	start := time.Now()
	pages, errs := parallel.Map(ctx, x.workers, files,
		func(rel string) string { return rel },
		func(ctx context.Context, rel string) (*Page, error) {
			return x.readPage(rel)
		})
	for _, err := range errs {
		x.logger.Warn("skipping document", "err", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	indexed := make(map[string]*Page, len(pages))
	for _, p := range pages {
		if p != nil {
			indexed[p.Path] = p
		}
	}

	x.mu.Lock()
	x.pages = indexed
	wasReady := x.ready
	x.ready = true
	x.mu.Unlock()

	x.logger.Debug("vault indexed", "root", x.root, "pages", len(indexed), "elapsed", time.Since(start))
	if !wasReady {
		x.readyObs.Notify()
	}
	x.updateObs.Notify()
	return nil
}

func (x *Index) markdownFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(x.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != x.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !utils.IsMarkdown(p) {
			return nil
		}
		rel, err := filepath.Rel(x.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", x.root, err)
	}
	return files, nil
}

func (x *Index) readPage(rel string) (*Page, error) {
	full := filepath.Join(x.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	page, err := parseDocument(rel, data)
	if err != nil {
		return nil, err
	}
	page.MTime = info.ModTime()
	page.CTime = info.ModTime()
	page.Size = info.Size()
	return page, nil
}

// Reindex re-reads one document (slash-separated, relative to the root) and
// fires index-updated notifications. A missing document is dropped.
func (x *Index) Reindex(rel string) error {
	rel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	page, err := x.readPage(rel)
	x.mu.Lock()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		delete(x.pages, rel)
		err = nil
	case err == nil:
		x.pages[page.Path] = page
	}
	x.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reindex %s: %w", rel, err)
	}
	x.logger.Debug("reindexed", "path", rel)
	x.updateObs.Notify()
	return nil
}

// Page returns the indexed page at rel.
func (x *Index) Page(rel string) (*Page, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.pages[rel]
	return p, ok
}

// Len returns the number of indexed pages.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.pages)
}

// Query parses and evaluates q. Pages come first in path order, then list
// items in path and line order.
func (x *Index) Query(ctx context.Context, q string) ([]engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := ParseQuery(q)
	if err != nil {
		return nil, &engine.QueryError{Query: q, Message: err.Error(), Err: err}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return nil, &engine.QueryError{Query: q, Err: engine.ErrNotReady}
	}

	paths := make([]string, 0, len(x.pages))
	for p := range x.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	c := newEvalCtx(x.now())
	var pages, items []engine.Result
	for _, p := range paths {
		page := x.pages[p]
		if parsed.root.eval(c, target{page: page}) {
			pages = append(pages, page.Result())
		}
		for _, it := range page.Items {
			if parsed.root.eval(c, target{page: page, item: it}) {
				items = append(items, it.Result())
			}
		}
	}
	return append(pages, items...), nil
}

// Ready reports whether the initial scan finished.
func (x *Index) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ready
}

// OnReady registers a one-shot readiness callback. When the index is already
// ready it fires on its own goroutine.
func (x *Index) OnReady(fn func()) engine.Subscription {
	sub := x.readyObs.Subscribe(fn, true)
	if x.Ready() {
		go x.readyObs.Notify()
	}
	return sub
}

// OnIndexUpdated registers a callback fired after every (re)index.
func (x *Index) OnIndexUpdated(fn func()) engine.Subscription {
	return x.updateObs.Subscribe(fn, false)
}

// Unsubscribe releases s.
func (x *Index) Unsubscribe(s engine.Subscription) {
	if x.updateObs.Unsubscribe(s) || x.readyObs.Unsubscribe(s) {
		x.logger.Debug("unsubscribed", "id", s.ID())
	}
}

// Watch starts an fsnotify watcher over the vault directories. Changes to
// markdown files are reindexed; new directories are added to the watch.
// The watcher stops when ctx is done or Close is called.
func (x *Index) Watch(ctx context.Context) error {
	x.watchMu.Lock()
	defer x.watchMu.Unlock()
	if x.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := x.addDirs(w, x.root); err != nil {
		w.Close()
		return err
	}
	x.watcher = w
	x.done = make(chan struct{})
	x.wg.Add(1)
	go x.watchLoop(ctx, w, x.done)
	return nil
}

func (x *Index) addDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != x.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (x *Index) watchLoop(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer x.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			x.handleEvent(w, evt)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			x.logger.Warn("watch error", "err", err)
		}
	}
}

func (x *Index) handleEvent(w *fsnotify.Watcher, evt fsnotify.Event) {
	rel, ok := utils.VaultPath(x.root, evt.Name)
	if !ok {
		return
	}

	if evt.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := x.addDirs(w, evt.Name); err != nil {
				x.logger.Warn("watch directory", "path", rel, "err", err)
			}
			if err := x.Load(context.Background()); err != nil {
				x.logger.Warn("rescan", "err", err)
			}
			return
		}
	}
	if !utils.IsMarkdown(evt.Name) {
		return
	}
	if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if err := x.Reindex(rel); err != nil {
		x.logger.Warn("reindex failed", "path", rel, "err", err)
	}
}

// Close stops the watcher, if any.
func (x *Index) Close() error {
	x.watchMu.Lock()
	w := x.watcher
	done := x.done
	x.watcher = nil
	x.done = nil
	x.watchMu.Unlock()
	if w == nil {
		return nil
	}
	close(done)
	err := w.Close()
	x.wg.Wait()
	return err
}
