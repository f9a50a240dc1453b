package vault

import (
	"path"
	"strings"
	"time"

	"github.com/nibzard/taskbase/internal/engine"
)

// Page is one indexed markdown document.
type Page struct {
	Path        string
	Name        string
	Folder      string
	Tags        []string
	Frontmatter map[string]any
	MTime       time.Time
	CTime       time.Time
	Size        int64

	// Items holds every list item of the page in line order.
	Items []*Item
	// Roots holds the top-level list items.
	Roots []*Item
}

// Item is a list item. Task is false for plain items, which carry no
// completion state.
type Item struct {
	Page      *Page
	Line      int
	Text      string
	Task      bool
	Completed bool
	Status    string
	Tags      []string
	Parent    *Item
	Children  []*Item
}

// ParentLine returns the line of the enclosing list item, or -1.
func (it *Item) ParentLine() int {
	if it.Parent == nil {
		return -1
	}
	return it.Parent.Line
}

// Result converts the item and its subtree to an engine record.
func (it *Item) Result() engine.Result {
	r := engine.Result{
		Path:       it.Page.Path,
		Line:       it.Line,
		Text:       it.Text,
		ParentLine: it.ParentLine(),
	}
	if it.Task {
		r.Completed = engine.Bool(it.Completed)
	}
	if len(it.Children) > 0 {
		r.Children = make([]engine.Result, len(it.Children))
		for i, c := range it.Children {
			r.Children[i] = c.Result()
		}
	}
	return r
}

// Result converts the page to a root-level engine record with no
// completion state.
func (p *Page) Result() engine.Result {
	return engine.Result{Path: p.Path, Line: 0, Text: p.Name, ParentLine: -1}
}

func newPage(rel string) *Page {
	rel = path.Clean(strings.TrimPrefix(rel, "/"))
	folder := path.Dir(rel)
	if folder == "." {
		folder = ""
	}
	base := path.Base(rel)
	return &Page{
		Path:   rel,
		Name:   strings.TrimSuffix(base, path.Ext(base)),
		Folder: folder,
	}
}

// field resolves a page property. Frontmatter keys match exactly first,
// then case-insensitively.
func (p *Page) field(name string) (any, bool) {
	switch name {
	case "$path", "$file":
		return p.Path, true
	case "$name":
		return p.Name, true
	case "$folder":
		return p.Folder, true
	case "$tags":
		return stringList(p.Tags), true
	case "$mtime":
		return p.MTime, true
	case "$ctime":
		return p.CTime, true
	case "$size":
		return float64(p.Size), true
	}
	if v, ok := p.Frontmatter[name]; ok {
		return normalize(v), true
	}
	for k, v := range p.Frontmatter {
		if strings.EqualFold(k, name) {
			return normalize(v), true
		}
	}
	return nil, false
}

func (it *Item) field(name string) (any, bool) {
	switch name {
	case "$completed":
		if !it.Task {
			return nil, false
		}
		return it.Completed, true
	case "$text":
		return it.Text, true
	case "$line":
		return float64(it.Line), true
	case "$status":
		return it.Status, true
	case "$path", "$file":
		return it.Page.Path, true
	case "$parentLine":
		return float64(it.ParentLine()), true
	case "$tags":
		return stringList(it.Tags), true
	}
	return nil, false
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// normalize maps decoded YAML values onto the comparison domain:
// string, float64, bool, time.Time, []any or nil.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
