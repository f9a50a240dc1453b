package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/tasks"
	"github.com/nibzard/taskbase/internal/view"
)

// Controller is the part of *view.Controller the TUI drives.
type Controller interface {
	State() view.State
	Refresh(ctx context.Context) (view.State, error)
	Toggle(ctx context.Context, r engine.Result) (bool, error)
	OnChange(fn func(view.State))
}

// RunTUI runs the interactive view until the user quits or ctx is done.
func RunTUI(ctx context.Context, ctrl Controller, title string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, ctrl, title), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type row struct {
	result engine.Result
	depth  int
}

func (r row) key() string {
	return fmt.Sprintf("%s:%d", r.result.Path, r.result.Line)
}

// Model is the bubbletea model over one controller.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	title   string
	updates chan view.State

	state  view.State
	rows   []row
	cursor int

	notice    string
	noticeErr bool

	keys   keyMap
	help   help.Model
	width  int
	height int
}

type stateMsg struct {
	state view.State
}

type refreshedMsg struct {
	state view.State
	err   error
}

type toggledMsg struct {
	result    engine.Result
	completed bool
	err       error
	state     view.State
}

// NewModel returns a model showing ctrl's current state. Later render
// passes arrive through ctrl's change listener.
func NewModel(ctx context.Context, ctrl Controller, title string) *Model {
	m := &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		title:   title,
		updates: make(chan view.State, 1),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	ctrl.OnChange(func(s view.State) { offer(m.updates, s) })
	m.setState(ctrl.State())
	return m
}

// offer replaces any undelivered state so the model only sees the latest.
func offer(ch chan view.State, s view.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForState(ctx context.Context, ch <-chan view.State) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-ch:
			return stateMsg{state: s}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.ctrl.Refresh(m.ctx)
		return refreshedMsg{state: s, err: err}
	}
}

func (m *Model) toggleCmd(r engine.Result) tea.Cmd {
	return func() tea.Msg {
		completed, err := m.ctrl.Toggle(m.ctx, r)
		msg := toggledMsg{result: r, completed: completed, err: err}
		// the render that follows the reindex is debounced; show the edit now
		msg.state, _ = m.ctrl.Refresh(m.ctx)
		return msg
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.ctx, m.updates), m.refreshCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = max(len(m.rows)-1, 0)
		case key.Matches(msg, m.keys.Toggle):
			if r, ok := m.Selected(); ok {
				return m, m.toggleCmd(r)
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case stateMsg:
		m.setState(msg.state)
		return m, waitForState(m.ctx, m.updates)
	case refreshedMsg:
		m.setState(msg.state)
		if msg.err != nil {
			m.setNotice(msg.err.Error(), true)
		}
	case toggledMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("toggle %s:%d: %v", msg.result.Path, msg.result.Line, msg.err), true)
		} else {
			verb := "reopened"
			if msg.completed {
				verb = "completed"
			}
			m.setNotice(verb+": "+msg.result.Text, false)
		}
		m.setState(msg.state)
	}
	return m, nil
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.noticeErr = isErr
}

func (m *Model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
}

// Selected returns the task under the cursor.
func (m *Model) Selected() (engine.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return engine.Result{}, false
	}
	return m.rows[m.cursor].result, true
}

// setState rebuilds the rows and keeps the cursor on the same task when it
// is still shown.
func (m *Model) setState(s view.State) {
	var selected string
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].key()
	}

	m.state = s
	m.rows = m.rows[:0]
	for _, g := range s.Groups {
		tasks.Walk(g.Tasks, func(r engine.Result, depth int) bool {
			m.rows = append(m.rows, row{result: r, depth: depth})
			return true
		})
	}

	for i, r := range m.rows {
		if r.key() == selected {
			m.cursor = i
			return
		}
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
}

func (m *Model) View() string {
	var header, body, footer strings.Builder

	title := m.title
	if title == "" {
		title = "taskbase"
	}
	header.WriteString(titleStyle.Render(title))
	if m.state.Rendered {
		header.WriteString(countStyle.Render(fmt.Sprintf("  %d/%d done", m.state.Done, m.state.Total)))
	}
	header.WriteString("\n\n")
	if m.state.Err != nil {
		header.WriteString(errorStyle.Render("error: "+m.state.Err.Error()) + "\n")
		if m.state.Stale && m.state.Rendered {
			header.WriteString(staleStyle.Render("(showing last good result)") + "\n")
		}
		header.WriteString("\n")
	}

	cursorLine := m.writeBody(&body)

	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		footer.WriteString("\n" + style.Render(m.notice) + "\n")
	}
	footer.WriteString("\n" + m.help.View(m.keys) + "\n")

	lines := strings.Split(strings.TrimSuffix(body.String(), "\n"), "\n")
	lines = m.window(lines, cursorLine, strings.Count(header.String(), "\n")+strings.Count(footer.String(), "\n"))
	return header.String() + strings.Join(lines, "\n") + "\n" + footer.String()
}

// writeBody renders the groups and returns the body line holding the cursor.
func (m *Model) writeBody(b *strings.Builder) int {
	switch {
	case !m.state.Rendered:
		if m.state.Err == nil {
			b.WriteString("waiting for index...\n")
		}
		return 0
	case len(m.state.Groups) == 0:
		b.WriteString("no matching tasks\n")
		return 0
	}

	line, cursorLine, i := 0, 0, 0
	for gi, g := range m.state.Groups {
		if gi > 0 {
			b.WriteString("\n")
			line++
		}
		total, done := tasks.CountTasks(g.Tasks)
		b.WriteString(groupStyle.Render(g.Path) + countStyle.Render(fmt.Sprintf(" (%d/%d)", done, total)) + "\n")
		line++
		tasks.Walk(g.Tasks, func(r engine.Result, depth int) bool {
			prefix := "  "
			if i == m.cursor {
				prefix = cursorStyle.Render("> ")
				cursorLine = line
			}
			text := r.Text
			if r.Done() {
				text = doneStyle.Render(text)
			}
			b.WriteString(prefix + strings.Repeat("  ", depth) + view.Marker(r) + " " + text + "\n")
			line++
			i++
			return true
		})
	}
	return cursorLine
}

// window trims lines to the terminal height, keeping cursorLine visible.
func (m *Model) window(lines []string, cursorLine, chrome int) []string {
	avail := m.height - chrome
	if m.height <= 0 || avail <= 0 || len(lines) <= avail {
		return lines
	}
	offset := 0
	if cursorLine >= avail {
		offset = cursorLine - avail + 1
	}
	return lines[offset : offset+avail]
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
