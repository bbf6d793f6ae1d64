package singleton

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aryankumar/fanout/internal/util"
)

// closer is a named teardown step
type closer struct {
	name string
	fn   func(context.Context) error
}

// Lifecycle runs registered teardowns in reverse registration order
type Lifecycle struct {
	mu      sync.Mutex
	closers []closer
	closed  bool

	// logger is nil when none was injected; log then resolves slog.Default
	// on every call so a handler installed later is honoured
	logger *slog.Logger
}

// NewLifecycle creates an empty lifecycle
// A nil logger follows whatever slog.Default is at the time of each log call
func NewLifecycle(logger *slog.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

func (l *Lifecycle) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

var process = New(func() *Lifecycle { return NewLifecycle(nil) })

// Process returns the process-wide lifecycle. main owns closing it.
func Process() *Lifecycle {
	return process.Get()
}

// Register adds a teardown step
// Returns ErrLifecycleClosed if Close already ran
func (l *Lifecycle) Register(name string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("teardown %q has no function", name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("register %q: %w", name, util.ErrLifecycleClosed)
	}

	l.closers = append(l.closers, closer{name: name, fn: fn})
	l.log().Debug("teardown registered", "name", name, "position", len(l.closers))

	return nil
}

// Len returns the number of registered teardowns
func (l *Lifecycle) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.closers)
}

// Close runs every teardown, last registered first.
// Every step runs even if an earlier one fails; failures are aggregated.
// Later calls are no-ops.
func (l *Lifecycle) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	closers := l.closers
	l.closers = nil
	l.mu.Unlock()

	l.log().Debug("running teardown", "steps", len(closers))

	errs := &util.MultiError{}
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			l.log().Error("teardown failed", "name", c.name, "error", err)
			errs.Add(fmt.Errorf("teardown %q: %w", c.name, err))
			continue
		}
		l.log().Debug("teardown complete", "name", c.name)
	}

	return errs.ErrorOrNil()
}
