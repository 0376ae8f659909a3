package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/philipparndt/gobcf/internal/logging"
)

type request[T any] struct {
	value T
	done  chan error
}

// resolve delivers err unless the request already has a result
func (r *request[T]) resolve(err error) {
	select {
	case r.done <- err:
	default:
	}
}

// Event is a capacity-one mailbox in front of a Loop. At most one payload waits
// at any time; Raise replaces a waiting payload and fails its waiter with
// ErrSuperseded. A payload that is already running is never interrupted.
type Event[T any] struct {
	loop    *Loop
	name    string
	handler func(ctx context.Context, value T) error

	mu      sync.Mutex
	pending *request[T]
}

// NewEvent creates an event that runs handler on loop
func NewEvent[T any](loop *Loop, name string, handler func(ctx context.Context, value T) error) *Event[T] {
	return &Event[T]{loop: loop, name: name, handler: handler}
}

// Name returns the event name used in logs
func (e *Event[T]) Name() string { return e.name }

// Raise schedules value. The returned channel receives exactly one result: the
// handler's error, ErrSuperseded or ErrClosed.
func (e *Event[T]) Raise(value T) <-chan error {
	req := &request[T]{value: value, done: make(chan error, 1)}

	e.mu.Lock()
	previous := e.pending
	e.pending = req
	e.mu.Unlock()

	if previous != nil {
		// the job posted for the previous payload picks up req; if that Post
		// fails, failPending resolves req instead
		logging.Logger().Warn("request superseded", "event", e.name)
		previous.resolve(ErrSuperseded)
		return req.done
	}

	if err := e.loop.Post(e.fire, e.abort); err != nil {
		e.failPending(err)
	}
	return req.done
}

// failPending resolves whatever request waits when no job is queued for it.
// That may be a later request that superseded the one whose Post failed.
func (e *Event[T]) failPending(err error) {
	if req := e.take(); req != nil {
		req.resolve(err)
	}
}

// Call raises value and waits for its result or for ctx to end
func (e *Event[T]) Call(ctx context.Context, value T) error {
	select {
	case err := <-e.Raise(value):
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", e.name, ctx.Err())
	}
}

func (e *Event[T]) take() *request[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	req := e.pending
	e.pending = nil
	return req
}

func (e *Event[T]) fire(ctx context.Context) {
	req := e.take()
	if req == nil {
		return
	}
	req.resolve(e.run(ctx, req.value))
}

func (e *Event[T]) run(ctx context.Context, value T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", e.name, r)
		}
	}()
	return e.handler(ctx, value)
}

func (e *Event[T]) abort() {
	e.failPending(ErrClosed)
}
