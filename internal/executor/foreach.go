package executor

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryankumar/fanout/internal/singleton"
	"github.com/aryankumar/fanout/internal/util"
	"github.com/google/uuid"
)

// DefaultCapacity is the worker count used when none is configured
const DefaultCapacity = 10

// Outcome is the result of running the function on one element
type Outcome struct {
	// Index is the element's position in the input
	Index int

	// OK is true if the task ran to completion without error
	OK bool

	// Err is the task error, or ErrInvalidHandle if the pool refused the task
	Err error

	// Duration is how long the task ran
	Duration time.Duration
}

// Batch is everything one ForEach call produced
type Batch struct {
	// ID correlates the batch's log lines
	ID uuid.UUID

	// Outcomes has one entry per element, in input order
	Outcomes []Outcome

	// Duration is the wall time from first submission to last collection
	Duration time.Duration

	err *util.MultiError
}

// Results returns the per-element success flags in input order
func (b *Batch) Results() []bool {
	results := make([]bool, len(b.Outcomes))
	for i, o := range b.Outcomes {
		results[i] = o.OK
	}
	return results
}

// Err returns every task error in input order as a *util.MultiError, or nil.
// Refused tasks are recorded as failed outcomes but are not part of Err.
func (b *Batch) Err() error {
	return b.err.ErrorOrNil()
}

// LastErr returns the task error of the highest-indexed failing element, or nil
func (b *Batch) LastErr() error {
	if b.err == nil {
		return nil
	}
	return b.err.Last()
}

// Executor applies a function to every element of a sequence on a bounded worker pool
// The pool is created on the first ForEach call and lives until Close
type Executor struct {
	// capacity is the configured worker count
	capacity int

	// logger for structured logging
	logger *slog.Logger

	// bootstrap guards pool creation; Close also consumes it so a closed
	// executor never builds a pool
	bootstrap sync.Once
	pool      atomic.Pointer[Pool]

	// mu protects last
	mu   sync.Mutex
	last []bool
}

// New creates an executor with the given capacity
// capacity must be > 0, otherwise it defaults to DefaultCapacity
func New(capacity int, logger *slog.Logger) *Executor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		capacity: capacity,
		logger:   logger,
	}
}

var defaultExecutor = singleton.NewManaged(singleton.Process(), "executor",
	func() *Executor { return New(DefaultCapacity, nil) },
	func(ctx context.Context, e *Executor) error { return e.Close(ctx) },
)

// Default returns the process-wide executor
// It is torn down when singleton.Process() is closed
func Default() *Executor {
	return defaultExecutor.Get()
}

// ForEach calls f with a pointer to every element of items, concurrently,
// and blocks until all calls have returned
func ForEach[T any](e *Executor, items []T, f func(*T) error) *Batch {
	return ForEachWithProgress(e, items, f, nil)
}

// ForEachWithProgress is ForEach with a callback invoked as each outcome is
// collected, with (collected, total) counts
func ForEachWithProgress[T any](e *Executor, items []T, f func(*T) error, progressFn func(completed, total int)) *Batch {
	tasks := func(yield func(func() error) bool) {
		for i := range items {
			elem := &items[i]
			if !yield(func() error { return f(elem) }) {
				return
			}
		}
	}
	return e.run(tasks, progressFn)
}

// ForEachSeq calls f with every value produced by seq, traversing it once
func ForEachSeq[T any](e *Executor, seq iter.Seq[T], f func(T) error) *Batch {
	tasks := func(yield func(func() error) bool) {
		for v := range seq {
			if !yield(func() error { return f(v) }) {
				return
			}
		}
	}
	return e.run(tasks, nil)
}

// run submits every task, then drains the handles in submission order
func (e *Executor) run(tasks iter.Seq[func() error], progressFn func(completed, total int)) *Batch {
	pool := e.ensurePool()

	batch := &Batch{ID: uuid.New()}
	startTime := time.Now()

	handles := make([]*Handle, 0)
	for task := range tasks {
		handles = append(handles, e.submit(pool, task))
	}

	total := len(handles)
	e.logger.Debug("batch dispatched", "batch", batch.ID, "tasks", total)

	batch.Outcomes = make([]Outcome, total)
	errs := &util.MultiError{}

	for i, h := range handles {
		outcome := Outcome{Index: i}

		if !h.Valid() {
			outcome.Err = util.ErrInvalidHandle
			e.logger.Error("completion handle is invalid", "batch", batch.ID, "index", i)
		} else if err := h.Wait(); err != nil {
			outcome.Err = util.WrapTaskError(i, err)
			outcome.Duration = h.Duration()
			errs.Add(outcome.Err)
			e.logger.Error("task failed", "batch", batch.ID, "index", i, "error", err)
		} else {
			outcome.OK = true
			outcome.Duration = h.Duration()
		}

		batch.Outcomes[i] = outcome

		if progressFn != nil {
			progressFn(i+1, total)
		}
	}

	batch.Duration = time.Since(startTime)
	if errs.Len() > 0 {
		batch.err = errs
	}

	e.mu.Lock()
	e.last = batch.Results()
	e.mu.Unlock()

	succeeded := CountSucceeded(batch.Outcomes)
	e.logger.Debug("batch completed",
		"batch", batch.ID,
		"total", total,
		"succeeded", succeeded,
		"failed", total-succeeded,
		"duration", batch.Duration)

	return batch
}

// ensurePool creates the pool on first use; it returns nil after Close
func (e *Executor) ensurePool() *Pool {
	e.bootstrap.Do(func() {
		e.logger.Info("bootstrapping worker pool", "capacity", e.capacity)
		e.pool.Store(NewPool(e.capacity, e.logger))
	})
	return e.pool.Load()
}

func (e *Executor) submit(pool *Pool, task func() error) *Handle {
	if pool == nil {
		return invalidHandle()
	}
	return pool.Submit(task)
}

// Results returns a copy of the outcome flags of the most recently completed
// batch; it is empty until a batch completes
func (e *Executor) Results() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.last)
}

// Capacity returns the configured worker count, available before the pool exists
func (e *Executor) Capacity() int {
	return e.capacity
}

// LiveWorkers returns the number of running workers; 0 until the first ForEach
func (e *Executor) LiveWorkers() int {
	if p := e.pool.Load(); p != nil && !p.IsShutdown() {
		return p.WorkerCount()
	}
	return 0
}

// Close shuts the pool down, letting queued tasks finish.
// Later ForEach calls record every element as failed.
func (e *Executor) Close(ctx context.Context) error {
	e.bootstrap.Do(func() {})

	p := e.pool.Load()
	if p == nil {
		e.logger.Debug("executor closed before bootstrap")
		return nil
	}
	if p.IsShutdown() {
		return nil
	}
	return p.Shutdown(ctx)
}
