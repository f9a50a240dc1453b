package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is an opaque handle for a registered callback.
type Subscription struct {
	id uuid.UUID
}

// ID returns a printable identifier for the handle.
func (s Subscription) ID() string {
	return s.id.String()
}

// Valid reports whether s was issued by a registry.
func (s Subscription) Valid() bool {
	return s.id != uuid.Nil
}

type observer struct {
	sub  Subscription
	fn   func()
	once bool
}

// Observers is a callback registry engines can embed to implement the
// subscription half of Engine. The zero value is ready to use.
type Observers struct {
	mu   sync.Mutex
	list []observer
}

// Subscribe registers fn and returns its handle. A one-shot observer is
// removed after its first notification.
func (o *Observers) Subscribe(fn func(), once bool) Subscription {
	sub := Subscription{id: uuid.New()}
	o.mu.Lock()
	o.list = append(o.list, observer{sub: sub, fn: fn, once: once})
	o.mu.Unlock()
	return sub
}

// Unsubscribe removes the observer registered under s.
// It reports whether one was removed.
func (o *Observers) Unsubscribe(s Subscription) bool {
	if !s.Valid() {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.list {
		if o.list[i].sub == s {
			o.list = append(o.list[:i], o.list[i+1:]...)
			return true
		}
	}
	return false
}

// Notify calls every registered observer in registration order, outside the
// registry lock, and drops one-shot observers.
func (o *Observers) Notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.list))
	kept := o.list[:0]
	for _, ob := range o.list {
		fns = append(fns, ob.fn)
		if !ob.once {
			kept = append(kept, ob)
		}
	}
	// clear the tail so dropped closures can be collected
	for i := len(kept); i < len(o.list); i++ {
		o.list[i] = observer{}
	}
	o.list = kept
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered observers.
func (o *Observers) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.list)
}
