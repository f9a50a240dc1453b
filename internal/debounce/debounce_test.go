package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock records scheduled callbacks and fires them on demand.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer, including stopped ones, to mimic timers that
// already fired when Stop was called.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func (c *fakeClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func TestBurstCollapses(t *testing.T) {
	clock := &fakeClock{}
	var calls int32
	d := New(500*time.Millisecond, func() { atomic.AddInt32(&calls, 1) }, WithAfterFunc(clock.AfterFunc))

	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	if !d.Pending() {
		t.Fatal("Pending() = false after Trigger")
	}
	if got := clock.live(); got != 1 {
		t.Errorf("live timers = %d, want 1", got)
	}
	for _, tm := range clock.timers {
		if tm.d != 500*time.Millisecond {
			t.Errorf("scheduled after %v", tm.d)
		}
	}

	clock.fireAll()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after run")
	}
}

func TestSeparateBursts(t *testing.T) {
	clock := &fakeClock{}
	var calls int32
	d := New(time.Second, func() { atomic.AddInt32(&calls, 1) }, WithAfterFunc(clock.AfterFunc))

	d.Trigger()
	clock.fireAll()
	d.Trigger()
	d.Trigger()
	clock.fireAll()
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestStop(t *testing.T) {
	clock := &fakeClock{}
	var calls int32
	d := New(time.Second, func() { atomic.AddInt32(&calls, 1) }, WithAfterFunc(clock.AfterFunc))

	d.Trigger()
	d.Stop()
	if d.Pending() {
		t.Error("Pending() = true after Stop")
	}
	d.Trigger()
	clock.fireAll()
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestRealClock(t *testing.T) {
	done := make(chan struct{}, 4)
	d := New(20*time.Millisecond, func() { done <- struct{}{} })
	defer d.Stop()

	for i := 0; i < 3; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}
	select {
	case <-done:
		t.Fatal("debounced function ran twice")
	case <-time.After(100 * time.Millisecond):
	}
}
