package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/tasks"
)

// Render writes s as a plain-text tree: one heading per document with its
// completion count, then the nested checklist items.
func Render(w io.Writer, s State) error {
	var b strings.Builder
	if s.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", s.Err)
		if s.Stale && s.Rendered {
			b.WriteString("(showing last good result)\n")
		}
	}
	if !s.Rendered {
		if s.Err == nil {
			b.WriteString("waiting for index...\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
	if len(s.Groups) == 0 {
		b.WriteString("no matching tasks\n")
	}
	for i, g := range s.Groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		total, done := tasks.CountTasks(g.Tasks)
		fmt.Fprintf(&b, "%s (%d/%d)\n", g.Path, done, total)
		tasks.Walk(g.Tasks, func(r engine.Result, depth int) bool {
			fmt.Fprintf(&b, "%s%s %s  :%d\n", strings.Repeat("  ", depth+1), Marker(r), r.Text, r.Line)
			return true
		})
	}
	if len(s.Groups) > 0 {
		fmt.Fprintf(&b, "\n%d/%d done\n", s.Done, s.Total)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Marker returns the checkbox text for r.
func Marker(r engine.Result) string {
	if r.Done() {
		return "[x]"
	}
	return "[ ]"
}
