package vault

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// target is the object an expression is evaluated against: a page, or a
// list item when item is set.
type target struct {
	page *Page
	item *Item
}

func (t target) isPage() bool {
	return t.item == nil
}

func (t target) field(name string) (any, bool) {
	if t.item != nil {
		return t.item.field(name)
	}
	return t.page.field(name)
}

// parent returns the enclosing list item, or the page for root items.
func (t target) parent() (target, bool) {
	switch {
	case t.item == nil:
		return target{}, false
	case t.item.Parent != nil:
		return target{page: t.page, item: t.item.Parent}, true
	default:
		return target{page: t.page}, true
	}
}

type memoKey struct {
	node *childOf
	page *Page
	item *Item
}

// evalCtx carries per-query state: the clock and childof memoization.
type evalCtx struct {
	now  time.Time
	memo map[memoKey]bool
}

func newEvalCtx(now time.Time) *evalCtx {
	return &evalCtx{now: now, memo: map[memoKey]bool{}}
}

func (e andExpr) eval(c *evalCtx, t target) bool {
	return e.left.eval(c, t) && e.right.eval(c, t)
}

func (e orExpr) eval(c *evalCtx, t target) bool {
	return e.left.eval(c, t) || e.right.eval(c, t)
}

func (e notExpr) eval(c *evalCtx, t target) bool {
	return !e.inner.eval(c, t)
}

func (e typeExpr) eval(_ *evalCtx, t target) bool {
	switch e.kind {
	case "@page":
		return t.isPage()
	case "@task":
		return t.item != nil && t.item.Task
	case "@list-item":
		return t.item != nil
	}
	return false
}

func (e pathExpr) eval(_ *evalCtx, t target) bool {
	return inPath(t.page.Path, e.prefix)
}

// inPath reports whether p is the document prefix names, with or without
// its extension, or lies in the folder prefix.
func inPath(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	if p == prefix || strings.HasPrefix(p, prefix+"/") {
		return true
	}
	return strings.TrimSuffix(p, ".md") == strings.TrimSuffix(prefix, ".md")
}

// eval matches when any ancestor of t (enclosing list items, then the page)
// satisfies the parent expression.
func (e *childOf) eval(c *evalCtx, t target) bool {
	for anc, ok := t.parent(); ok; anc, ok = anc.parent() {
		key := memoKey{node: e, page: anc.page, item: anc.item}
		hit, seen := c.memo[key]
		if !seen {
			hit = e.parent.eval(c, anc)
			c.memo[key] = hit
		}
		if hit {
			return true
		}
	}
	return false
}

func (e truthyExpr) eval(c *evalCtx, t target) bool {
	return truthy(e.operand.value(c, t))
}

func (e compareExpr) eval(c *evalCtx, t target) bool {
	return compare(e.left.value(c, t), e.op, e.right.value(c, t))
}

func (e containsExpr) eval(c *evalCtx, t target) bool {
	return contains(e.left.value(c, t), e.arg.value(c, t))
}

func (f fieldRef) value(_ *evalCtx, t target) any {
	v, _ := t.field(f.name)
	return v
}

func (l literal) value(*evalCtx, target) any {
	return l.v
}

func (d dateLit) value(c *evalCtx, _ target) any {
	switch d.raw {
	case "now":
		return c.now
	case "today":
		y, m, day := c.now.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, c.now.Location())
	}
	tm, _ := toTime(d.raw)
	return tm
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case time.Time:
		return !x.IsZero()
	}
	return true
}

// compare applies op to a and b. A missing value equals only another
// missing value and is never ordered. A list on the left matches when any
// element does.
func compare(a any, op string, b any) bool {
	if list, ok := a.([]any); ok {
		if op == "!=" {
			for _, e := range list {
				if compare(e, "=", b) {
					return false
				}
			}
			return true
		}
		for _, e := range list {
			if compare(e, op, b) {
				return true
			}
		}
		return false
	}

	if a == nil || b == nil {
		switch op {
		case "=":
			return a == nil && b == nil
		case "!=":
			return !(a == nil && b == nil)
		}
		return false
	}

	c, ok := order(a, b)
	if !ok {
		return op == "!="
	}
	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// order compares a and b after coercing both to the type of the more
// specific side: date, then number, then bool, then string.
func order(a, b any) (int, bool) {
	_, at := a.(time.Time)
	_, bt := b.(time.Time)
	if at || bt {
		ta, ok1 := toTime(a)
		tb, ok2 := toTime(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		return ta.Compare(tb), true
	}

	_, an := a.(float64)
	_, bn := b.(float64)
	if an || bn {
		fa, ok1 := toNumber(a)
		fb, ok2 := toNumber(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	_, ab := a.(bool)
	_, bb := b.(bool)
	if ab || bb {
		ba, ok1 := toBool(a)
		bv, ok2 := toBool(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch {
		case ba == bv:
			return 0, true
		case !ba:
			return -1, true
		}
		return 1, true
	}

	return strings.Compare(toString(a), toString(b)), true
}

// contains reports whether a list holds an element equal to b, or a string
// holds b as a substring.
func contains(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return false
	case []any:
		for _, e := range x {
			if compare(e, "=", b) {
				return true
			}
		}
		return false
	}
	if b == nil {
		return false
	}
	return strings.Contains(toString(a), toString(b))
}

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range timeLayouts {
			if tm, err := time.ParseInLocation(layout, strings.TrimSpace(x), time.Local); err == nil {
				return tm, true
			}
		}
	}
	return time.Time{}, false
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	}
	return false, false
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
