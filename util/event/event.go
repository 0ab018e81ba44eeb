package event

import (
	"context"
	"sync"

	"github.com/spikeekips/synctimer/util"
)

var ErrClosed = util.NewError("event closed")

type Subscription uint64

type handler[T any] struct {
	f  func(T)
	id Subscription
}

// Event is the publish/subscribe channel. Fire calls the subscribers
// synchronously in the subscription order; the subscribers may subscribe,
// unsubscribe or fire again inside the handler.
type Event[T any] struct {
	waiters  []chan T
	handlers []handler[T]
	last     Subscription
	closed   bool
	sync.RWMutex
}

func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Subscribe adds the handler. After Close, Subscribe returns 0 and the handler
// is never called.
func (e *Event[T]) Subscribe(f func(T)) Subscription {
	e.Lock()
	defer e.Unlock()

	if e.closed || f == nil {
		return 0
	}

	e.last++

	e.handlers = append(e.handlers, handler[T]{id: e.last, f: f})

	return e.last
}

// Unsubscribe removes the handler; unknown or already removed subscription is
// ignored.
func (e *Event[T]) Unsubscribe(id Subscription) bool {
	e.Lock()
	defer e.Unlock()

	for i := range e.handlers {
		if e.handlers[i].id != id {
			continue
		}

		hs := make([]handler[T], len(e.handlers)-1)
		copy(hs, e.handlers[:i])
		copy(hs[i:], e.handlers[i+1:])

		e.handlers = hs

		return true
	}

	return false
}

// SubscribePulse subscribes f, which ignores the fired value. The returned
// function unsubscribes and can be called several times.
func (e *Event[T]) SubscribePulse(f func()) func() {
	id := e.Subscribe(func(T) { f() })

	var once sync.Once

	return func() {
		once.Do(func() {
			_ = e.Unsubscribe(id)
		})
	}
}

func (e *Event[T]) Fire(v T) {
	e.Lock()

	if e.closed {
		e.Unlock()

		return
	}

	hs := e.handlers
	ws := e.waiters
	e.waiters = nil

	e.Unlock()

	for i := range hs {
		hs[i].f(v)
	}

	for i := range ws {
		ws[i] <- v
		close(ws[i])
	}
}

// Wait blocks until the next Fire.
func (e *Event[T]) Wait(ctx context.Context) (v T, _ error) {
	e.Lock()

	if e.closed {
		e.Unlock()

		return v, ErrClosed.Call()
	}

	ch := make(chan T, 1)
	e.waiters = append(e.waiters, ch)

	e.Unlock()

	select {
	case <-ctx.Done():
		e.removeWaiter(ch)

		return v, ctx.Err()
	case i, ok := <-ch:
		if !ok {
			return v, ErrClosed.Call()
		}

		return i, nil
	}
}

func (e *Event[T]) Len() int {
	e.RLock()
	defer e.RUnlock()

	return len(e.handlers)
}

// Close removes all the handlers and releases the waiters with ErrClosed.
func (e *Event[T]) Close() {
	e.Lock()
	defer e.Unlock()

	if e.closed {
		return
	}

	e.closed = true
	e.handlers = nil

	for i := range e.waiters {
		close(e.waiters[i])
	}

	e.waiters = nil
}

func (e *Event[T]) removeWaiter(ch chan T) {
	e.Lock()
	defer e.Unlock()

	for i := range e.waiters {
		if e.waiters[i] != ch {
			continue
		}

		ws := make([]chan T, len(e.waiters)-1)
		copy(ws, e.waiters[:i])
		copy(ws[i:], e.waiters[i+1:])

		e.waiters = ws

		return
	}
}
