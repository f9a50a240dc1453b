package view

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/nibzard/taskbase/internal/checkbox"
	"github.com/nibzard/taskbase/internal/debounce"
	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/logging"
	"github.com/nibzard/taskbase/internal/query"
	"github.com/nibzard/taskbase/internal/selection"
	"github.com/nibzard/taskbase/internal/tasks"
)

// DefaultDebounce is the quiet interval before an index update re-renders.
const DefaultDebounce = 500 * time.Millisecond

// State is the outcome of the latest render pass. When Err is set, Groups
// holds the last good result and Stale is true.
type State struct {
	Definition selection.Definition
	Query      string
	Groups     []tasks.Group
	Total      int
	Done       int
	Err        error
	Stale      bool
	Rendered   bool
	UpdatedAt  time.Time
}

// Reindexer is implemented by engines that can refresh one document on
// demand. The controller calls it after a successful toggle.
type Reindexer interface {
	Reindex(path string) error
}

// Controller owns one live view over an engine.
type Controller struct {
	mu       sync.Mutex
	engine   engine.Engine
	mutator  *checkbox.Mutator
	selPath  string
	def      selection.Definition
	state    State
	subs     []engine.Subscription
	closed   bool
	selWatch *selectionWatch

	debouncer *debounce.Debouncer
	interval  time.Duration
	debOpts   []debounce.Option
	locale    language.Tag
	logger    *log.Logger
	journal   logging.Recorder
	now       func() time.Time

	listenMu  sync.Mutex
	listeners []func(State)

	// ctx is used for passes started by engine notifications.
	ctx context.Context
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet interval for index-updated notifications.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// WithDebounceOptions passes options to the underlying debouncer.
func WithDebounceOptions(opts ...debounce.Option) Option {
	return func(c *Controller) {
		c.debOpts = append(c.debOpts, opts...)
	}
}

// WithLocale sets the collation locale for the file sort.
func WithLocale(tag language.Tag) Option {
	return func(c *Controller) {
		c.locale = tag
	}
}

// WithLogger sets the console logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithJournal records render passes, failures and toggles.
func WithJournal(r logging.Recorder) Option {
	return func(c *Controller) {
		c.journal = r
	}
}

// WithSelectionPath names the file ReloadSelection reads.
func WithSelectionPath(path string) Option {
	return func(c *Controller) {
		c.selPath = path
	}
}

// New returns a Controller for def. Call Start to follow the engine.
func New(eng engine.Engine, mut *checkbox.Mutator, def selection.Definition, opts ...Option) *Controller {
	c := &Controller{
		engine:   eng,
		mutator:  mut,
		def:      def,
		interval: DefaultDebounce,
		locale:   language.Und,
		now:      time.Now,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	c.state = State{Definition: def, Query: query.Compile(def)}
	c.debouncer = debounce.New(c.interval, c.onDebounce, c.debOpts...)
	return c
}

// Open loads the selection file at path and returns a Controller for it.
func Open(eng engine.Engine, mut *checkbox.Mutator, path string, opts ...Option) (*Controller, error) {
	def, err := selection.Load(path)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithSelectionPath(path)}, opts...)
	return New(eng, mut, *def, opts...), nil
}

// Start subscribes to engine readiness and index updates. The first pass
// runs once the engine is ready; later passes follow debounced updates.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.subs) > 0 {
		return
	}
	c.ctx = ctx
	c.subs = append(c.subs,
		c.engine.OnReady(func() {
			if _, err := c.Refresh(ctx); err != nil {
				c.logger.Debug("initial render failed", "err", err)
			}
		}),
		c.engine.OnIndexUpdated(c.debouncer.Trigger),
	)
}

func (c *Controller) onDebounce() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if _, err := c.Refresh(ctx); err != nil {
		c.logger.Debug("render failed", "err", err)
	}
}

// OnChange registers fn to receive the state after every pass.
func (c *Controller) OnChange(fn func(State)) {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) emit(s State) {
	c.listenMu.Lock()
	fns := append([]func(State){}, c.listeners...)
	c.listenMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// State returns the latest state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Definition returns the active selection definition.
func (c *Controller) Definition() selection.Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def
}

// Pending reports whether a debounced pass is scheduled.
func (c *Controller) Pending() bool {
	return c.debouncer.Pending()
}

// Refresh runs one render pass against the engine's current state. When the
// engine is not ready the pass is a no-op. A query failure is recorded in
// the state, marking the previous groups stale, and returned.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	c.mu.Lock()
	s, changed, err := c.refreshLocked(ctx)
	c.mu.Unlock()
	if changed {
		c.emit(s)
	}
	return s, err
}

func (c *Controller) refreshLocked(ctx context.Context) (State, bool, error) {
	if c.closed || !c.engine.Ready() {
		return c.state, false, nil
	}

	q := query.Compile(c.def)
	results, err := c.engine.Query(ctx, q)
	if err != nil {
		c.fail(q, logging.EventQueryError, err)
		return c.state, true, err
	}

	groups := tasks.Aggregate(results, c.def.View, tasks.WithLocale(c.locale))
	total, done := tasks.Count(groups)
	c.state = State{
		Definition: c.def,
		Query:      q,
		Groups:     groups,
		Total:      total,
		Done:       done,
		Rendered:   true,
		UpdatedAt:  c.now(),
	}
	c.logger.Debug("rendered", "groups", len(groups), "tasks", total, "done", done)
	c.record(logging.Event{Type: logging.EventRender, Query: q, Groups: len(groups), Tasks: total, Done: done})
	return c.state, true, nil
}

// fail keeps the last good groups and marks them stale.
func (c *Controller) fail(q, eventType string, err error) {
	c.state.Definition = c.def
	c.state.Query = q
	c.state.Err = err
	c.state.Stale = true
	c.state.UpdatedAt = c.now()
	c.logger.Warn("render failed", "err", err)
	c.record(logging.Event{Type: eventType, Query: q, Error: err.Error()})
}

func (c *Controller) record(e logging.Event) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(e); err != nil {
		c.logger.Debug("journal write failed", "err", err)
	}
}

// SetDefinition replaces the selection wholesale and re-renders.
func (c *Controller) SetDefinition(ctx context.Context, def selection.Definition) (State, error) {
	c.mu.Lock()
	c.def = def
	c.state.Definition = def
	c.state.Query = query.Compile(def)
	s, changed, err := c.refreshLocked(ctx)
	c.mu.Unlock()
	if changed {
		c.emit(s)
	}
	return s, err
}

// ReloadSelection re-reads the selection file. On a parse failure the
// previous definition stays active and the error is kept in the state.
func (c *Controller) ReloadSelection(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.closed {
		s := c.state
		c.mu.Unlock()
		return s, nil
	}
	if c.selPath == "" {
		c.mu.Unlock()
		return c.State(), fmt.Errorf("no selection file")
	}
	def, err := selection.Load(c.selPath)
	if err != nil {
		c.fail(query.Compile(c.def), logging.EventConfigError, err)
		s := c.state
		c.mu.Unlock()
		c.emit(s)
		return s, err
	}
	c.def = *def
	s, changed, err := c.refreshLocked(ctx)
	if !changed {
		// engine not ready yet; still show the new definition
		c.state.Definition = *def
		c.state.Query = query.Compile(*def)
		c.state.Err = nil
		s = c.state
	}
	c.mu.Unlock()
	c.emit(s)
	return s, err
}

// Toggle flips r's checkbox in its source document and returns the new
// completion state. The view re-renders after the engine reindexes.
func (c *Controller) Toggle(ctx context.Context, r engine.Result) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggleLocked(ctx, checkbox.TargetOf(r))
}

func (c *Controller) toggleLocked(ctx context.Context, t checkbox.Target) (bool, error) {
	completed, err := c.mutator.Toggle(ctx, t)
	line := t.Line
	if err != nil {
		c.logger.Warn("toggle failed", "path", t.Path, "line", t.Line, "err", err)
		c.record(logging.Event{Type: logging.EventToggleError, Path: t.Path, Line: &line, Error: err.Error()})
		return completed, err
	}
	c.record(logging.Event{Type: logging.EventToggle, Path: t.Path, Line: &line, Completed: &completed})
	c.reindex(t.Path)
	return completed, nil
}

func (c *Controller) reindex(path string) {
	ri, ok := c.engine.(Reindexer)
	if !ok {
		return
	}
	if err := ri.Reindex(path); err != nil {
		c.logger.Warn("reindex failed", "path", path, "err", err)
		c.record(logging.Event{Type: logging.EventReindex, Path: path, Error: err.Error()})
		return
	}
	c.record(logging.Event{Type: logging.EventReindex, Path: path})
}

// SetStatus sets r's completion to desired, writing nothing when it
// already matches.
func (c *Controller) SetStatus(ctx context.Context, r engine.Result, desired bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := checkbox.TargetOf(r)
	if t.Completed == desired {
		return nil
	}
	_, err := c.toggleLocked(ctx, t)
	return err
}

// ToggleBatch toggles each result in order, one at a time. Failures do not
// stop later entries; the returned slice has one entry per input.
func (c *Controller) ToggleBatch(ctx context.Context, rs []engine.Result) []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := make([]error, len(rs))
	for i, r := range rs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		_, errs[i] = c.toggleLocked(ctx, checkbox.TargetOf(r))
	}
	return errs
}

// Close cancels any pending pass and releases every engine subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.debouncer.Stop()
	if c.selWatch != nil {
		c.selWatch.stop()
		c.selWatch = nil
	}
	for _, s := range c.subs {
		c.engine.Unsubscribe(s)
	}
	c.subs = nil
}
