// Package singleton holds process-wide instances that are built lazily and
// torn down explicitly.
//
// A Holder runs its constructor exactly once, no matter how many goroutines
// call Get concurrently; callers that arrive during construction block until
// it finishes and then all observe the same instance. There is no way to reset
// or replace the instance. Holders built with NewManaged register a teardown
// with a Lifecycle, and the owner of that Lifecycle (normally main) decides
// when and in which order instances are destroyed.
package singleton

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Holder owns exactly one lazily constructed instance of T
type Holder[T any] struct {
	once     sync.Once
	ctor     func() T
	instance T
	ready    atomic.Bool
}

// New returns a holder that builds its instance with ctor on first Get.
// A panic inside ctor propagates to the caller that triggered construction.
func New[T any](ctor func() T) *Holder[T] {
	if ctor == nil {
		panic("singleton: nil constructor")
	}
	return &Holder[T]{ctor: ctor}
}

// NewManaged is like New, but once the instance exists its teardown is
// registered with lc under name.
func NewManaged[T any](lc *Lifecycle, name string, ctor func() T, teardown func(context.Context, T) error) *Holder[T] {
	if lc == nil {
		panic("singleton: nil lifecycle")
	}

	return New(func() T {
		instance := ctor()
		if teardown != nil {
			if err := lc.Register(name, func(ctx context.Context) error {
				return teardown(ctx, instance)
			}); err != nil {
				lc.log().Error("instance built after teardown, it will not be destroyed",
					"name", name, "error", err)
			}
		}
		return instance
	})
}

// Get returns the instance, constructing it on the first call.
// If construction panicked, every later Get panics too; there is no retry.
func (h *Holder[T]) Get() T {
	h.once.Do(func() {
		h.instance = h.ctor()
		h.ready.Store(true)
	})
	if !h.ready.Load() {
		panic("singleton: construction failed earlier")
	}
	return h.instance
}

// Initialized reports whether construction has completed
func (h *Holder[T]) Initialized() bool {
	return h.ready.Load()
}

// Must adapts an error-returning constructor; a construction error is fatal
func Must[T any](ctor func() (T, error)) func() T {
	return func() T {
		v, err := ctor()
		if err != nil {
			panic(fmt.Errorf("singleton construction failed: %w", err))
		}
		return v
	}
}
