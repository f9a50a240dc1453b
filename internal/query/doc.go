// Package query compiles selection definitions into query-language
// expressions for the indexing engine.
//
// The emitted language is small:
//
//	@task and childof(@page and path("Projects") and status = "active") and $completed = false
//
// Filter values are classified (see Classify) and rendered as date
// constructors, booleans, numbers, or double-quoted strings.
package query
