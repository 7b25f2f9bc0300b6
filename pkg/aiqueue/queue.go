// Package aiqueue serializes calls to the local model: one task runs at a
// time, in submission order, with a short pause between tasks.
package aiqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of AI work.
type Task func(ctx context.Context) (any, error)

type result struct {
	val any
	err error
}

type job struct {
	ctx  context.Context
	task Task
	done chan result
}

// Options configures a Queue.
type Options struct {
	Pause          time.Duration
	Timeouts       map[string]time.Duration
	DefaultTimeout time.Duration
	Gate           *Gate
	Logger         *slog.Logger
}

// Queue is a FIFO of tasks drained by a single goroutine. The drain
// goroutine starts on first use and exits when the queue is empty.
type Queue struct {
	opts Options

	mu      sync.Mutex
	pending []*job
	running bool
	active  bool
}

func New(opts Options) *Queue {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Queue{opts: opts}
}

// Enqueue appends task and blocks until it has run. If ctx ends first the
// caller stops waiting; a task still pending when its ctx ends is skipped.
func (q *Queue) Enqueue(ctx context.Context, task Task) (any, error) {
	j := &job{ctx: ctx, task: task, done: make(chan result, 1)}

	q.mu.Lock()
	q.pending = append(q.pending, j)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()

	select {
	case r := <-j.done:
		return r.val, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit checks the battery gate, then enqueues task under the budget
// configured for label.
func (q *Queue) Submit(ctx context.Context, label string, task Task) (any, error) {
	if !q.opts.Gate.Allow(ctx) {
		q.opts.Logger.Info("ai task skipped", "label", label, "reason", ErrBatteryLow)
		return nil, ErrBatteryLow
	}
	budget := q.Budget(label)
	return q.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return RunWithTimeout(ctx, label, budget, task)
	})
}

// Budget returns the timeout for label, falling back to the default.
func (q *Queue) Budget(label string) time.Duration {
	if d, ok := q.opts.Timeouts[label]; ok {
		return d
	}
	return q.opts.DefaultTimeout
}

// Pending is the number of tasks waiting to start.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Busy reports whether a task is executing.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.active = false
			q.mu.Unlock()
			return
		}
		j := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.active = true
		q.mu.Unlock()

		if err := j.ctx.Err(); err != nil {
			j.done <- result{err: err}
			continue
		}

		v, err := safeCall(j.ctx, j.task)
		j.done <- result{val: v, err: err}

		q.mu.Lock()
		q.active = false
		q.mu.Unlock()

		if q.opts.Pause > 0 {
			time.Sleep(q.opts.Pause)
		}
	}
}

func safeCall(ctx context.Context, task Task) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// Do runs fn through q.Submit and converts the result back to T.
func Do[T any](ctx context.Context, q *Queue, label string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := q.Submit(ctx, label, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok && v != nil {
		return zero, fmt.Errorf("ai task %s returned %T", label, v)
	}
	return out, nil
}
