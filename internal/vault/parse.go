package vault

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.TaskList))

var (
	// itemPrefix matches a list marker and an optional checkbox.
	itemPrefix = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s*(?:\[(.)\]\s*)?`)
	tagPattern = regexp.MustCompile(`(?:^|[\s(,;])#([\p{L}\p{N}_/-]+)`)
	digitsOnly = regexp.MustCompile(`^\d+$`)
)

// parseDocument builds a Page from markdown source. Frontmatter is read with
// yaml.v3; list items come from the goldmark AST with the task-list
// extension, and their line numbers are zero-based lines of src.
func parseDocument(rel string, src []byte) (*Page, error) {
	page := newPage(rel)

	body, meta, err := splitFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("%s: frontmatter: %w", rel, err)
	}
	page.Frontmatter = meta
	page.Tags = mergeTags(frontmatterTags(meta), inlineTags(string(body)))

	lines := strings.Split(string(src), "\n")
	doc := markdown.Parser().Parse(text.NewReader(body))

	var stack []frame
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		li, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !entering {
			if len(stack) > 0 && stack[len(stack)-1].node == li {
				stack = stack[:len(stack)-1]
			}
			return ast.WalkContinue, nil
		}
		line, ok := itemLine(li, body)
		if !ok || line >= len(lines) {
			return ast.WalkContinue, nil
		}
		item := newItem(page, line, lines[line], li)
		if len(stack) > 0 {
			parent := stack[len(stack)-1].item
			item.Parent = parent
			parent.Children = append(parent.Children, item)
		} else {
			page.Roots = append(page.Roots, item)
		}
		page.Items = append(page.Items, item)
		stack = append(stack, frame{node: li, item: item})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	return page, nil
}

type frame struct {
	node ast.Node
	item *Item
}

func newItem(page *Page, line int, raw string, li *ast.ListItem) *Item {
	raw = strings.TrimRight(raw, "\r")
	item := &Item{Page: page, Line: line}
	loc := itemPrefix.FindStringSubmatchIndex(raw)
	rest := raw
	if loc != nil {
		rest = raw[loc[1]:]
	}
	if box := checkbox(li); box != nil {
		item.Task = true
		item.Completed = box.IsChecked
		if loc != nil && loc[2] >= 0 {
			item.Status = raw[loc[2]:loc[3]]
		}
	} else if loc != nil && loc[2] >= 0 {
		// not a checkbox, so "[.]" belongs to the text
		rest = strings.TrimLeft(raw[loc[2]-1:], " \t")
	}
	item.Text = strings.TrimSpace(rest)
	item.Tags = inlineTags(item.Text)
	return item
}

// checkbox returns the task checkbox of li's first text block, if any.
func checkbox(li *ast.ListItem) *east.TaskCheckBox {
	first := li.FirstChild()
	if first == nil {
		return nil
	}
	if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		return box
	}
	return nil
}

// itemLine finds the source line of li from its first text segment.
func itemLine(li *ast.ListItem, src []byte) (int, bool) {
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		if _, nested := c.(*ast.List); nested {
			break
		}
		segs := c.Lines()
		if segs.Len() == 0 {
			continue
		}
		start := segs.At(0).Start
		return bytes.Count(src[:start], []byte("\n")), true
	}
	return 0, false
}

// splitFrontmatter returns src with a leading YAML frontmatter block blanked
// out (line count preserved) and the decoded metadata.
func splitFrontmatter(src []byte) ([]byte, map[string]any, error) {
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return src, nil, nil
	}
	lines := bytes.SplitAfter(src, []byte("\n"))
	end := -1
	for i := 1; i < len(lines); i++ {
		l := bytes.TrimRight(lines[i], "\r\n")
		if string(l) == "---" || string(l) == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return src, nil, nil
	}

	meta := map[string]any{}
	block := bytes.Join(lines[1:end], nil)
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, nil, err
	}

	body := make([]byte, 0, len(src))
	for i := 0; i <= end; i++ {
		if bytes.HasSuffix(lines[i], []byte("\n")) {
			body = append(body, '\n')
		}
	}
	for _, l := range lines[end+1:] {
		body = append(body, l...)
	}
	return body, meta, nil
}

func frontmatterTags(meta map[string]any) []string {
	var raw []string
	for _, key := range []string{"tags", "tag"} {
		switch v := meta[key].(type) {
		case string:
			raw = append(raw, strings.FieldsFunc(v, func(r rune) bool {
				return r == ',' || r == ' '
			})...)
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok {
					raw = append(raw, s)
				}
			}
		}
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t != "" {
			tags = append(tags, "#"+t)
		}
	}
	return tags
}

// inlineTags returns the #tags of s in order of appearance. Purely numeric
// tags are ignored.
func inlineTags(s string) []string {
	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		if digitsOnly.MatchString(m[1]) {
			continue
		}
		tags = append(tags, "#"+m[1])
	}
	return tags
}

func mergeTags(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lists {
		for _, t := range l {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
