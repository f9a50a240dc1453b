package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs fn once per burst of Trigger calls.
type Debouncer struct {
	interval  time.Duration
	fn        func()
	afterFunc AfterFunc

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc replaces the clock used to schedule runs.
func WithAfterFunc(af AfterFunc) Option {
	return func(d *Debouncer) {
		d.afterFunc = af
	}
}

// New returns a Debouncer that calls fn interval after the last Trigger.
func New(interval time.Duration, fn func(), opts ...Option) *Debouncer {
	d := &Debouncer{interval: interval, fn: fn, afterFunc: stdAfterFunc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger cancels any pending run and schedules a new one. It does nothing
// after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.afterFunc(d.interval, func() { d.fire(gen) })
}

// fire runs fn unless a later Trigger or Stop superseded generation gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels a pending run and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
