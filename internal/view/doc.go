// Package view is the live task view: it compiles a selection definition,
// queries the engine, aggregates the results into groups, applies checkbox
// toggles and re-renders after debounced index updates.
//
// Every operation on a Controller runs under one mutex, so render passes,
// toggles and selection reloads never interleave.
package view
