package tasks

import "github.com/nibzard/taskbase/internal/engine"

// ChildTasks returns the direct children of r that are tasks. Plain list
// items, and everything beneath them, are dropped.
func ChildTasks(r engine.Result) []engine.Result {
	var out []engine.Result
	for _, c := range r.Children {
		if c.IsTask() {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits each task in nodes depth-first, in order, with its depth
// (0 for the given nodes). Plain list items are skipped with their subtrees.
// Returning false from fn stops descent below that node.
func Walk(nodes []engine.Result, fn func(r engine.Result, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []engine.Result, depth int, fn func(engine.Result, int) bool) {
	for _, n := range nodes {
		if !n.IsTask() {
			continue
		}
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// CountTasks counts tasks in nodes and all their task descendants.
func CountTasks(nodes []engine.Result) (total, done int) {
	Walk(nodes, func(r engine.Result, _ int) bool {
		total++
		if r.Done() {
			done++
		}
		return true
	})
	return total, done
}

// Count sums CountTasks over every group.
func Count(groups []Group) (total, done int) {
	for _, g := range groups {
		t, d := CountTasks(g.Tasks)
		total += t
		done += d
	}
	return total, done
}
