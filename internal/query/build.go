package query

import (
	"strings"

	"github.com/nibzard/taskbase/internal/selection"
)

// Query-language building blocks.
const (
	AllPages       = "@page"
	AllTasks       = "@task"
	CompletedField = "$completed"
)

// BuildFilterExpression renders one filter. "contains" becomes a method call
// on the property; every other operator is an infix comparison.
func BuildFilterExpression(f selection.Filter) string {
	lit := Classify(f.Value).Render()
	if f.Operator == selection.OpContains {
		return f.Property + ".contains(" + lit + ")"
	}
	return f.Property + " " + string(f.Operator) + " " + lit
}

// BuildPageQuery selects the pages described by src: all pages, narrowed by
// the folder scope and then by each filter in declaration order.
func BuildPageQuery(src selection.Source) string {
	conds := []string{AllPages}
	if folder := strings.TrimSpace(src.Folder); folder != "" {
		conds = append(conds, "path("+Quote(folder)+")")
	}
	for _, f := range src.Filters {
		conds = append(conds, BuildFilterExpression(f))
	}
	return strings.Join(conds, " and ")
}

// BuildQuery selects tasks under the pages described by src. Completed tasks
// are excluded here, and only here, unless view.ShowCompleted is set.
func BuildQuery(src selection.Source, view selection.View) string {
	q := AllTasks + " and childof(" + BuildPageQuery(src) + ")"
	if !view.ShowCompleted {
		q += " and " + CompletedField + " = false"
	}
	return q
}

// Compile is BuildQuery over a whole definition.
func Compile(d selection.Definition) string {
	return BuildQuery(d.Source, d.View)
}
