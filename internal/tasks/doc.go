// Package tasks turns a flat engine result set into grouped, sorted task
// trees.
//
// Only root records (ParentLine < 0) become group members; nested records are
// reached through their parent's Children and are never rendered twice.
// Members of a group are always ordered by line number. Groups are ordered by
// the view's sort rule.
package tasks
