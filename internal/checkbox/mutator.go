package checkbox

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskbase/internal/engine"
)

// linePattern matches a checklist line: indentation, a list marker, optional
// spacing, then "[", one marker character, "]" and the rest of the line.
var linePattern = regexp.MustCompile(`^(\s*[-*+]\s*\[)([ xX])(\].*)$`)

const (
	markDone = 'x'
	markOpen = ' '
)

// Target identifies a checklist line and its last observed state.
type Target struct {
	Path      string
	Line      int
	Completed bool
}

// TargetOf builds a Target from an engine record. Plain list items count as
// incomplete.
func TargetOf(r engine.Result) Target {
	return Target{Path: r.Path, Line: r.Line, Completed: r.Done()}
}

// Mutator applies completion edits through a Store.
type Mutator struct {
	store  Store
	logger *log.Logger
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithLogger sets the logger used for write and failure reports.
func WithLogger(l *log.Logger) Option {
	return func(m *Mutator) {
		m.logger = l
	}
}

// New returns a Mutator writing through store.
func New(store Store, opts ...Option) *Mutator {
	m := &Mutator{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Toggle flips the checkbox of t to the negation of t.Completed and returns
// the new state. On failure the document is not written and the error is a
// *ToggleError, or the store's error for I/O failures.
func (m *Mutator) Toggle(ctx context.Context, t Target) (bool, error) {
	want := !t.Completed
	err := m.apply(ctx, t, want)
	if err != nil {
		m.debug("toggle failed", "path", t.Path, "line", t.Line, "err", err)
		return t.Completed, err
	}
	m.debug("toggled", "path", t.Path, "line", t.Line, "completed", want)
	return want, nil
}

// SetStatus makes t's completion equal desired. It performs no write when the
// observed state already matches.
func (m *Mutator) SetStatus(ctx context.Context, t Target, desired bool) error {
	if t.Completed == desired {
		return nil
	}
	_, err := m.Toggle(ctx, t)
	return err
}

// ToggleBatch toggles each target strictly one after another, in order.
// A failure does not stop later targets. The result has one entry per
// target; nil means the toggle applied.
func (m *Mutator) ToggleBatch(ctx context.Context, targets []Target) []error {
	errs := make([]error, len(targets))
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		_, errs[i] = m.Toggle(ctx, t)
	}
	return errs
}

func (m *Mutator) apply(ctx context.Context, t Target, completed bool) error {
	kind, err := m.store.Lookup(ctx, t.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", t.Path, err)
	}
	switch kind {
	case EntryMissing:
		return &ToggleError{Kind: NotFound, Path: t.Path, Line: t.Line}
	case EntryDir:
		return &ToggleError{Kind: NotAFile, Path: t.Path, Line: t.Line}
	}

	text, err := m.store.Read(ctx, t.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.Path, err)
	}

	updated, err := SetLine(text, t.Line, completed)
	if err != nil {
		if te, ok := err.(*ToggleError); ok {
			te.Path = t.Path
		}
		return err
	}

	if err := m.store.Write(ctx, t.Path, updated); err != nil {
		return fmt.Errorf("write %s: %w", t.Path, err)
	}
	return nil
}

func (m *Mutator) debug(msg string, keyvals ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, keyvals...)
	}
}

// SetLine returns text with the checkbox marker on line (zero-indexed) set to
// completed. Every other byte is preserved, including line endings.
func SetLine(text string, line int, completed bool) (string, error) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= lineCount(text, lines) {
		return "", &ToggleError{Kind: InvalidLine, Line: line,
			Err: fmt.Errorf("document has %d lines", lineCount(text, lines))}
	}

	target := lines[line]
	loc := linePattern.FindStringSubmatchIndex(target)
	if loc == nil {
		return "", &ToggleError{Kind: NotACheckbox, Line: line}
	}

	mark := byte(markOpen)
	if completed {
		mark = markDone
	}
	// group 2 is the single marker byte
	at := loc[4]
	lines[line] = target[:at] + string(mark) + target[at+1:]
	return strings.Join(lines, "\n"), nil
}

// lineCount ignores the empty element after a trailing newline.
func lineCount(text string, lines []string) int {
	if strings.HasSuffix(text, "\n") {
		return len(lines) - 1
	}
	return len(lines)
}
