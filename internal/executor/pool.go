package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aryankumar/fanout/internal/util"
	"github.com/eapache/queue"
)

// Pool is a fixed set of worker goroutines consuming tasks from a FIFO queue
// Workers are started by NewPool and live until Shutdown
type Pool struct {
	// workers is the number of worker goroutines
	workers int

	// queue holds pending jobs in submission order
	queue *queue.Queue

	// mu protects queue and closed; cond wakes idle workers
	mu   sync.Mutex
	cond *sync.Cond

	// closed indicates the pool no longer accepts tasks
	closed bool

	// logger for structured logging
	logger *slog.Logger

	// wg tracks running workers; done is closed once they have all exited
	wg   sync.WaitGroup
	done chan struct{}
}

// job pairs a task with the handle its result is delivered to
type job struct {
	task   func() error
	handle *Handle
}

// NewPool starts a pool with the specified number of workers
// workers must be > 0, otherwise it defaults to 1
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		workers: workers,
		queue:   queue.New(),
		logger:  logger,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go func() {
		p.wg.Wait()
		close(p.done)
	}()

	p.logger.Debug("worker pool started", "workers", workers)

	return p
}

// Submit queues a task and returns its completion handle
// The handle is invalid if the task is nil or the pool is shut down
func (p *Pool) Submit(task func() error) *Handle {
	if task == nil {
		p.logger.Debug("rejected nil task")
		return invalidHandle()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("rejected task, pool is shut down")
		return invalidHandle()
	}

	h := newHandle()
	p.queue.Add(job{task: task, handle: h})
	pending := p.queue.Length()
	p.mu.Unlock()

	p.cond.Signal()
	p.logger.Debug("task submitted", "pending", pending)

	return h
}

// worker pops jobs until the pool is closed and the queue is empty
func (p *Pool) worker(workerID int) {
	defer p.wg.Done()

	p.logger.Debug("worker started", "worker_id", workerID)

	for {
		p.mu.Lock()
		for p.queue.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queue.Length() == 0 {
			p.mu.Unlock()
			p.logger.Debug("worker finished (pool shut down)", "worker_id", workerID)
			return
		}
		j := p.queue.Remove().(job)
		p.mu.Unlock()

		startTime := time.Now()
		err := runTask(j.task)
		j.handle.complete(err, time.Since(startTime))

		if err != nil {
			p.logger.Debug("task failed", "worker_id", workerID, "error", err)
		}
	}
}

// runTask executes a task, converting a panic into an error
func runTask(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", util.ErrTaskPanic, r)
		}
	}()

	return task()
}

// Shutdown stops accepting tasks and waits for queued tasks to finish
// The context timeout controls how long to wait for the workers to drain
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("pool already shut down: %w", util.ErrPoolShutdown)
	}
	p.closed = true
	pending := p.queue.Length()
	p.mu.Unlock()

	p.cond.Broadcast()

	p.logger.Info("shutting down worker pool", "pending", pending)

	select {
	case <-p.done:
		p.logger.Info("worker pool shut down successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// IsShutdown returns true if the pool has been shut down
func (p *Pool) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// QueueLength returns the number of tasks waiting for a worker
func (p *Pool) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Length()
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workers
}
