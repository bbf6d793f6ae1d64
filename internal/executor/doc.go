// Package executor runs a function over every element of a sequence on a
// bounded worker pool and records a per-element outcome.
//
// # Basic Usage
//
//	exec := executor.New(10, logger)
//	defer exec.Close(ctx)
//
//	batch := executor.ForEach(exec, hosts, func(h *Host) error {
//	    return h.Ping()
//	})
//
//	if err := batch.Err(); err != nil {
//	    // Outcomes are recorded even when some elements fail
//	    for _, i := range executor.FailedIndices(batch.Outcomes) {
//	        log.Printf("host %d failed", i)
//	    }
//	}
//
// The process-wide instance is available through Default; it is torn down
// when singleton.Process() is closed.
//
// # Pool Bootstrap
//
// The worker pool is created on the first ForEach call, exactly once, with
// Capacity workers. It is never resized. Capacity is valid before bootstrap;
// LiveWorkers reports 0 until then.
//
// # Outcomes and Errors
//
// Tasks are submitted in input order and may finish in any order. Handles are
// drained in input order, so Outcomes[i] always belongs to element i. Every
// handle is drained before ForEach returns, even after a failure.
//
//   - A task that returns an error or panics is recorded as failed, logged,
//     and included in Batch.Err (a *util.MultiError in input order).
//     Batch.LastErr returns only the last one.
//   - A task the pool refused (after Close) is recorded as failed with
//     util.ErrInvalidHandle and logged, but is not part of Batch.Err.
//
// # Thread Safety
//
// ForEach may be called from many goroutines at once; each call owns its
// Batch. Results returns a copy of the most recently completed batch's flags.
// ForEach cannot be cancelled; tasks that need deadlines should close over a
// context.
package executor
