// Package engine defines the contract between taskbase and an external
// indexing engine.
//
// An engine executes query-language strings against its index and returns a
// flat, ordered sequence of Result records. It also exposes an initialization
// signal (Ready plus a one-shot OnReady notification) and an "index updated"
// notification stream. Subscriptions are opaque handles released with
// Unsubscribe; their lifetime belongs to the consuming component.
//
// The engine never receives writes from taskbase. Completion edits go to the
// document text, which the engine is expected to observe and reindex.
package engine
