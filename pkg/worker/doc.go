// Package worker provides a generic, bounded worker pool used by the
// runtime to execute component activations off the scheduler goroutine.
//
// The pool runs a fixed number of goroutines draining a buffered channel of
// work items. Submit is non-blocking: when the queue is full the item is
// dropped and ErrQueueFull returned, so callers get an immediate overload
// signal instead of latency. Statistics are always tracked with atomics;
// Prometheus metrics are opt-in via WithMetricsRegistry.
//
// Lifecycle: Start once, Submit concurrently, Stop with a timeout. Stop
// closes the work channel, lets workers drain what is queued, and returns
// ErrStopTimeout if they do not finish in time.
package worker
