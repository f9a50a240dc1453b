package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of one job.
type Result[T any] struct {
	ID       string
	Index    int
	Value    T
	Error    error
	Duration time.Duration
}

// WorkerPool runs jobs with bounded concurrency.
type WorkerPool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []Result[T]
	errors     []error
	submitted  int
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a pool. A maxWorkers of 0 means no bound.
// With failFast the pool context is cancelled on the first error.
func NewWorkerPool[T any](ctx context.Context, maxWorkers int, failFast bool) *WorkerPool[T] {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
		results:    make([]Result[T], 0),
	}
}

// Submit schedules fn. Jobs submitted after cancellation are dropped.
// The job receives the pool context.
// Index counts every Submit call, including dropped ones.
func (p *WorkerPool[T]) Submit(id string, fn func(ctx context.Context) (T, error)) {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return
	default:
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}

		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		value, err := fn(p.ctx)
		result := Result[T]{
			ID:       id,
			Index:    index,
			Value:    value,
			Error:    err,
			Duration: time.Since(start),
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		p.results = append(p.results, result)
		if err != nil {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", id, err))
			if p.failFast {
				p.cancel()
			}
		}
	}()
}

// Wait blocks until every started job finishes and returns results in
// completion order along with the collected errors.
func (p *WorkerPool[T]) Wait() ([]Result[T], []error) {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancel()

	results := make([]Result[T], len(p.results))
	copy(results, p.results)

	errs := make([]error, len(p.errors))
	copy(errs, p.errors)

	return results, errs
}

// Results returns a snapshot of the results so far.
func (p *WorkerPool[T]) Results() []Result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]Result[T], len(p.results))
	copy(results, p.results)
	return results
}

// Errors returns a snapshot of the errors so far.
func (p *WorkerPool[T]) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errs := make([]error, len(p.errors))
	copy(errs, p.errors)
	return errs
}

// Cancel cancels pending work.
func (p *WorkerPool[T]) Cancel() {
	p.cancel()
}

// Map applies fn to every item with at most workers in flight and returns
// the outputs in input order. Items whose job failed or never ran keep the
// zero value; their errors are returned alongside.
func Map[In, Out any](ctx context.Context, workers int, items []In, id func(In) string, fn func(context.Context, In) (Out, error)) ([]Out, []error) {
	pool := NewWorkerPool[Out](ctx, workers, false)
	for _, item := range items {
		item := item
		pool.Submit(id(item), func(ctx context.Context) (Out, error) {
			return fn(ctx, item)
		})
	}
	results, errs := pool.Wait()

	out := make([]Out, len(items))
	for _, r := range results {
		if r.Error == nil {
			out[r.Index] = r.Value
		}
	}
	return out, errs
}
