// Package dispatch serializes document mutation onto one goroutine.
//
// A Loop is the mutation context: every request that touches the host document
// runs on it, one at a time. An Event is a single-slot mailbox feeding the loop:
// raising it while a previous payload still waits replaces that payload, so only
// the most recent request runs.
package dispatch

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned for requests that can no longer run because the loop stopped
	ErrClosed = errors.New("dispatch loop closed")
	// ErrSuperseded is returned to a request whose payload was replaced before it ran
	ErrSuperseded = errors.New("request superseded by newer request")
)

type job struct {
	run   func(ctx context.Context)
	abort func()
}

// Loop runs posted jobs sequentially on the goroutine that calls Run
type Loop struct {
	mu      sync.Mutex
	queue   []job
	wake    chan struct{}
	closed  bool
	started bool
	idle    func()
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// SetIdle registers fn to run on the loop every time its queue drains after work
func (l *Loop) SetIdle(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.idle = fn
}

// Post queues fn. abort, if not nil, is called instead of fn when the loop
// stops before fn got to run.
func (l *Loop) Post(fn func(ctx context.Context), abort func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, job{run: fn, abort: abort})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run executes jobs until ctx is cancelled. Jobs still queued at that point are
// aborted and later Posts fail with ErrClosed. Run returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return errors.New("dispatch loop already running")
	}
	l.started = true
	l.mu.Unlock()

	defer l.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}

		ran := false
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			j, ok := l.next()
			if !ok {
				break
			}
			j.run(ctx)
			ran = true
		}

		if ran {
			l.mu.Lock()
			idle := l.idle
			l.mu.Unlock()
			if idle != nil {
				idle()
			}
		}
	}
}

func (l *Loop) next() (job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return job{}, false
	}
	j := l.queue[0]
	l.queue = l.queue[1:]
	return j, true
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.closed = true
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, j := range pending {
		if j.abort != nil {
			j.abort()
		}
	}
}
