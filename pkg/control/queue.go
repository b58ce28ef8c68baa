// Package control serialises work for a single device.
//
// Protocol events, user commands and periodic feedback polls all run on
// one goroutine per device, so feedback state is only ever touched from
// that goroutine and subscribers observe changes in submission order.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Queue errors.
var (
	ErrStopped     = errors.New("control queue stopped")
	ErrTaskPanic   = errors.New("control task panicked")
	ErrTaskRunning = errors.New("control task still running")
)

// DefaultCapacity is the number of tasks that may wait to run.
const DefaultCapacity = 64

// Option configures a Queue.
type Option func(*Queue)

// WithCapacity sets the task buffer size.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithTick runs fn on the queue every interval, interleaved with
// submitted tasks. Drivers use it to poll their feedbacks.
func WithTick(interval time.Duration, fn func()) Option {
	return func(q *Queue) {
		q.interval = interval
		q.tick = fn
	}
}

// Queue runs submitted functions one at a time, in FIFO order, on a
// single goroutine.
type Queue struct {
	capacity int
	logger   *slog.Logger
	interval time.Duration
	tick     func()

	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewQueue creates a queue. Call Start before submitting blocking work.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan func(), q.capacity)
	return q
}

// Start launches the queue goroutine. Tasks posted before Start run
// once it begins. A stopped queue cannot be restarted.
func (q *Queue) Start() {
	select {
	case <-q.stopped:
		return
	default:
	}
	if q.running.Swap(true) {
		return // Already running
	}

	q.wg.Add(1)
	go q.loop()
}

// Stop halts the queue and waits for the running task to finish.
// Tasks still waiting are dropped.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopped)
	})
	q.wg.Wait()
	q.running.Store(false)
}

// Running reports whether the queue goroutine is active.
func (q *Queue) Running() bool {
	return q.running.Load()
}

// Post submits fn without waiting. It returns false if the queue is
// stopped or full.
func (q *Queue) Post(fn func()) bool {
	select {
	case <-q.stopped:
		return false
	default:
	}

	select {
	case q.tasks <- fn:
		return true
	default:
		q.logger.Warn("control queue full, task dropped", "capacity", q.capacity)
		return false
	}
}

// Task states for Do.
const (
	taskPending int32 = iota
	taskStarted
	taskAbandoned
)

// Do submits fn and waits for it to run, returning its error. It must
// not be called from a task running on the same queue.
//
// If ctx ends while fn is still waiting, fn is skipped and Do returns
// ctx.Err(). If fn has already started, it runs to completion and Do
// returns ctx.Err() joined with ErrTaskRunning.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	var state atomic.Int32
	done := make(chan error, 1)
	task := func() {
		if !state.CompareAndSwap(taskPending, taskStarted) {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", ErrTaskPanic, r)
			}
		}()
		done <- fn()
	}

	select {
	case q.tasks <- task:
	case <-q.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-q.stopped:
		// The task may have completed just before the stop.
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(taskPending, taskAbandoned) {
			return ctx.Err()
		}
		select {
		case err := <-done:
			return err
		default:
			return fmt.Errorf("%w: %w", ErrTaskRunning, ctx.Err())
		}
	}
}

func (q *Queue) loop() {
	defer q.wg.Done()

	var tick <-chan time.Time
	if q.tick != nil && q.interval > 0 {
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-q.stopped:
			return
		case fn := <-q.tasks:
			q.run(fn)
		case <-tick:
			q.run(q.tick)
		}
	}
}

// run executes fn, logging a panic instead of killing the goroutine.
func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("control task panicked", "error", fmt.Errorf("%w: %v", ErrTaskPanic, r))
		}
	}()
	fn()
}
