package engine

import (
	"context"
	"errors"
	"fmt"
)

// Engine is the query-able index taskbase reads from.
type Engine interface {
	// Query executes q and returns matching records in engine order.
	// Rejected or failing expressions return a *QueryError.
	Query(ctx context.Context, q string) ([]Result, error)
	// Ready reports whether the engine finished its initial indexing.
	Ready() bool
	// OnReady registers fn to run once when the engine becomes ready.
	// If the engine is already ready, fn runs as soon as possible.
	OnReady(fn func()) Subscription
	// OnIndexUpdated registers fn to run after every reindex.
	OnIndexUpdated(fn func()) Subscription
	// Unsubscribe releases a handle returned by OnReady or OnIndexUpdated.
	// Releasing an unknown or already released handle is a no-op.
	Unsubscribe(s Subscription)
}

// Result is one record of a query result set. List items that are not
// checklist items have a nil Completed.
type Result struct {
	Path       string   `json:"path"`
	Line       int      `json:"line"`
	Completed  *bool    `json:"completed,omitempty"`
	Text       string   `json:"text"`
	ParentLine int      `json:"parentLine"`
	Children   []Result `json:"children,omitempty"`
}

// IsRoot reports whether r is not nested under another list item.
func (r Result) IsRoot() bool {
	return r.ParentLine < 0
}

// IsTask reports whether r carries a completion attribute.
func (r Result) IsTask() bool {
	return r.Completed != nil
}

// Done returns the completion state, treating plain list items as incomplete.
func (r Result) Done() bool {
	return r.Completed != nil && *r.Completed
}

// Bool returns a pointer to b, for building Results.
func Bool(b bool) *bool {
	return &b
}

// ErrQuery is matched by every *QueryError.
var ErrQuery = errors.New("query failed")

// QueryError reports that the engine rejected or failed to evaluate a query.
type QueryError struct {
	Query   string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("query failed: %v", e.Err)
	}
	return "query failed: " + e.Message
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrQuery) hold for every QueryError.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

// ErrNotReady is returned by engines that cannot answer queries before their
// initial index is built.
var ErrNotReady = errors.New("engine not ready")
