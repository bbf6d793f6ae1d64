package executor

import (
	"time"

	"github.com/aryankumar/fanout/internal/util"
)

// Handle is the completion handle for one submitted task
type Handle struct {
	valid    bool
	done     chan struct{}
	err      error
	duration time.Duration
}

func newHandle() *Handle {
	return &Handle{valid: true, done: make(chan struct{})}
}

// invalidHandle is returned when the pool refuses a task
func invalidHandle() *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{done: done, err: util.ErrInvalidHandle}
}

func (h *Handle) complete(err error, d time.Duration) {
	h.err = err
	h.duration = d
	close(h.done)
}

// Valid reports whether the task was accepted by the pool
func (h *Handle) Valid() bool {
	return h != nil && h.valid
}

// Done is closed once the task has finished
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes and returns its error.
// An invalid handle returns ErrInvalidHandle immediately.
func (h *Handle) Wait() error {
	if !h.Valid() {
		return util.ErrInvalidHandle
	}
	<-h.done
	return h.err
}

// Duration is how long the task ran; zero until Done is closed
func (h *Handle) Duration() time.Duration {
	if !h.Valid() {
		return 0
	}
	select {
	case <-h.done:
		return h.duration
	default:
		return 0
	}
}
