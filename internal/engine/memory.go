package engine

import (
	"context"
	"sync"
)

// Memory is an in-process Engine serving a fixed result set. It is used by
// tests and by callers that already hold results from another source.
type Memory struct {
	mu      sync.Mutex
	ready   bool
	results []Result
	err     error
	queries []string

	readyObs  Observers
	updateObs Observers
}

// NewMemory returns a Memory engine. Pass ready=false to model an engine
// that is still building its index.
func NewMemory(ready bool, results []Result) *Memory {
	return &Memory{ready: ready, results: results}
}

// Query returns the configured results or error and records q.
func (m *Memory) Query(ctx context.Context, q string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if !m.ready {
		return nil, &QueryError{Query: q, Err: ErrNotReady}
	}
	if m.err != nil {
		return nil, &QueryError{Query: q, Message: m.err.Error(), Err: m.err}
	}
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out, nil
}

// Ready reports the readiness flag.
func (m *Memory) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// OnReady registers a one-shot readiness callback.
func (m *Memory) OnReady(fn func()) Subscription {
	if m.Ready() {
		sub := m.readyObs.Subscribe(fn, true)
		go m.readyObs.Notify()
		return sub
	}
	return m.readyObs.Subscribe(fn, true)
}

// OnIndexUpdated registers an index-updated callback.
func (m *Memory) OnIndexUpdated(fn func()) Subscription {
	return m.updateObs.Subscribe(fn, false)
}

// Unsubscribe releases s from either stream.
func (m *Memory) Unsubscribe(s Subscription) {
	if !m.updateObs.Unsubscribe(s) {
		m.readyObs.Unsubscribe(s)
	}
}

// SetReady flips readiness; a transition to ready fires OnReady observers.
func (m *Memory) SetReady(ready bool) {
	m.mu.Lock()
	was := m.ready
	m.ready = ready
	m.mu.Unlock()
	if ready && !was {
		m.readyObs.Notify()
	}
}

// SetResults replaces the result set and fires index-updated observers.
func (m *Memory) SetResults(results []Result) {
	m.mu.Lock()
	m.results = results
	m.mu.Unlock()
	m.updateObs.Notify()
}

// SetError makes subsequent queries fail with err (nil clears it).
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Queries returns every query string received so far.
func (m *Memory) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Subscribers returns the number of live subscriptions.
func (m *Memory) Subscribers() int {
	return m.readyObs.Len() + m.updateObs.Len()
}
