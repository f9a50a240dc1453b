package tasks

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nibzard/taskbase/internal/engine"
	"github.com/nibzard/taskbase/internal/selection"
)

// Group holds the root tasks of one source document.
type Group struct {
	Path  string
	Tasks []engine.Result
}

// GroupByFile collects root records per source path in one pass. Groups come
// back in order of first appearance; members are sorted by line number.
func GroupByFile(results []engine.Result) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range results {
		if !r.IsRoot() {
			continue
		}
		i, ok := index[r.Path]
		if !ok {
			i = len(groups)
			index[r.Path] = i
			groups = append(groups, Group{Path: r.Path})
		}
		groups[i].Tasks = append(groups[i].Tasks, r)
	}
	for i := range groups {
		tasks := groups[i].Tasks
		sort.SliceStable(tasks, func(a, b int) bool { return tasks[a].Line < tasks[b].Line })
	}
	return groups
}

type sortOptions struct {
	locale language.Tag
}

// SortOption configures SortGroups.
type SortOption func(*sortOptions)

// WithLocale sets the collation locale used for path ordering.
func WithLocale(tag language.Tag) SortOption {
	return func(o *sortOptions) {
		o.locale = tag
	}
}

// SortGroups orders groups by sortBy and dir and returns a new slice.
// "file" compares paths with locale-aware collation. Any other sortBy is
// accepted and leaves the order unchanged.
func SortGroups(groups []Group, sortBy string, dir selection.Direction, opts ...SortOption) []Group {
	o := sortOptions{locale: language.Und}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]Group, len(groups))
	copy(out, groups)

	switch sortBy {
	case selection.SortFile:
		sign := 1
		if dir == selection.Desc {
			sign = -1
		}
		c := collate.New(o.locale)
		sort.SliceStable(out, func(i, j int) bool {
			return sign*c.CompareString(out[i].Path, out[j].Path) < 0
		})
	default:
		// other keys keep first-appearance order
	}
	return out
}

// Aggregate groups results by file and orders the groups per view.
func Aggregate(results []engine.Result, view selection.View, opts ...SortOption) []Group {
	return SortGroups(GroupByFile(results), view.SortBy, view.SortDirection, opts...)
}
