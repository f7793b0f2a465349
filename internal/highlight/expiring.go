// Package highlight holds short-lived display annotations: a value that is
// set, shown for a fixed duration and then cleared on its own.
package highlight

import (
	"sync"
	"time"
)

// DefaultTTL is how long a changed-digit highlight stays visible.
const DefaultTTL = 400 * time.Millisecond

// Expiring holds a value that clears itself ttl after the last Set.
// A Set while a previous value is still live cancels and replaces it.
type Expiring[T any] struct {
	ttl      time.Duration
	onExpire func()

	mu    sync.Mutex
	value T
	live  bool
	gen   uint64
	timer *time.Timer
}

// NewExpiring creates an empty annotation. onExpire, if set, runs on the
// timer goroutine after the value is cleared, without any lock held.
func NewExpiring[T any](ttl time.Duration, onExpire func()) *Expiring[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Expiring[T]{ttl: ttl, onExpire: onExpire}
}

// Set stores v and restarts the expiry timer.
func (e *Expiring[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.value = v
	e.live = true
	e.timer = time.AfterFunc(e.ttl, func() { e.expire(gen) })
}

func (e *Expiring[T]) expire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.live {
		// replaced or cleared since this timer was armed
		e.mu.Unlock()
		return
	}
	var zero T
	e.value = zero
	e.live = false
	e.timer = nil
	e.mu.Unlock()

	if e.onExpire != nil {
		e.onExpire()
	}
}

// Get returns the live value, if any.
func (e *Expiring[T]) Get() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.live
}

// Clear drops the value immediately without calling onExpire.
func (e *Expiring[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	var zero T
	e.value = zero
	e.live = false
}
