// Package ratelimit serializes calls to an upstream that tolerates at most one
// request per interval.
//
// Tasks start in the order they were submitted and never closer together than
// the configured interval. A single drain goroutine runs while work is queued
// and exits when the queue is empty. Task errors are returned to the caller
// unchanged, and a panicking task fails with ErrTaskPanicked. The limiter
// neither retries nor cancels work.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between task starts.
const DefaultInterval = time.Second

var (
	// ErrQueueFull is returned when a bounded limiter has no room for more work.
	ErrQueueFull = errors.New("rate limiter queue is full")
	// ErrTaskPanicked wraps the value recovered from a panicking task.
	ErrTaskPanicked = errors.New("rate limiter task panicked")
)

// Task is a unit of work scheduled by the limiter.
type Task func(ctx context.Context) error

type entry struct {
	ctx  context.Context
	task Task
	done chan error
}

// Limiter is a FIFO queue drained at most once per interval.
type Limiter struct {
	interval time.Duration
	maxQueue int
	logger   *slog.Logger

	mu       sync.Mutex
	queue    []*entry
	draining bool

	// lastDispatch is only touched by the drain goroutine. Successive drain
	// goroutines are ordered through mu.
	lastDispatch time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMaxQueue bounds the number of waiting tasks. Zero means unbounded.
func WithMaxQueue(n int) Option {
	return func(l *Limiter) { l.maxQueue = n }
}

// WithLogger sets the logger used for queue diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// New returns a limiter spacing task starts by interval.
// A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, opts ...Option) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Limiter{
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the minimum spacing between task starts.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Pending returns the number of tasks waiting to start.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Do enqueues task and blocks until it has run, returning its error as is.
// ctx is passed through to the task; it does not remove the task from the queue.
func (l *Limiter) Do(ctx context.Context, task Task) error {
	e := &entry{ctx: ctx, task: task, done: make(chan error, 1)}

	l.mu.Lock()
	if l.maxQueue > 0 && len(l.queue) >= l.maxQueue {
		l.mu.Unlock()
		return ErrQueueFull
	}
	l.queue = append(l.queue, e)
	start := !l.draining
	l.draining = true
	depth := len(l.queue)
	l.mu.Unlock()

	if start {
		go l.drain()
	} else {
		l.logger.DebugContext(ctx, "rate limiter: task queued", "depth", depth)
	}
	return <-e.done
}

// Execute runs task through l and returns its result.
func Execute[T any](ctx context.Context, l *Limiter, task func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := l.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = task(ctx)
		return err
	})
	return out, err
}

func (l *Limiter) drain() {
	for {
		e, ok := l.next()
		if !ok {
			return
		}

		if !l.lastDispatch.IsZero() {
			if wait := l.interval - time.Since(l.lastDispatch); wait > 0 {
				time.Sleep(wait)
			}
		}
		l.lastDispatch = time.Now()

		e.done <- l.run(e)
	}
}

// run calls the task, turning a panic into an error for its caller so the
// drain loop keeps going.
func (l *Limiter) run(e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.ErrorContext(e.ctx, "rate limiter: task panicked", "panic", r)
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return e.task(e.ctx)
}

// next pops the head of the queue, or marks the limiter idle when empty.
func (l *Limiter) next() (*entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		l.draining = false
		return nil, false
	}
	e := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return e, true
}
