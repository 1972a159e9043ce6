// Package events provides the typed change notification primitive shared by
// the deckhand managers. Each manager exposes its own Emitter per event type
// instead of a stringly-typed global bus.
package events

import "sync"

// Emitter is a thread-safe synchronous fan-out for values of type T.
// The zero value is ready to use.
type Emitter[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn to receive every published value.
// The returned function unsubscribes the handler; calling it more than once
// is harmless.
func (e *Emitter[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		filtered := make([]subscriber[T], 0, len(e.subs))
		for _, s := range e.subs {
			if s.id != id {
				filtered = append(filtered, s)
			}
		}
		e.subs = filtered
	}
}

// Publish delivers v to every handler subscribed at the time of the call,
// synchronously and in subscription order. Handlers are invoked outside the
// emitter lock, so a handler may subscribe or unsubscribe without deadlock.
func (e *Emitter[T]) Publish(v T) {
	e.mu.RLock()
	targets := make([]func(T), len(e.subs))
	for i, s := range e.subs {
		targets[i] = s.fn
	}
	e.mu.RUnlock()

	for _, fn := range targets {
		fn(v)
	}
}
