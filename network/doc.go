// Package network executes a flow graph: it materializes nodes into
// component instances, edges into buffered channels, and runs a single
// scheduling goroutine that serializes every packet delivery, activation
// completion and live topology mutation.
//
// Component activations execute on a worker pool, but all bookkeeping
// flows back through the scheduling loop as posted commands. Because the
// loop applies one command at a time, the finished check (no pending
// packets, no open brackets, no in-flight activations) is atomic
// relative to everything that could change its answer.
//
// Channels operate in one of two delivery modes. The default push mode
// queues past capacity with a warning, matching legacy unbounded
// delivery; WithStrictBackpressure switches every channel to pull mode,
// where a full buffer fails the push with ErrBackpressure before the
// packet is accepted.
//
// Networks subscribe to their graph source, so topology edits while
// running are applied live. Mutations touching a node with an in-flight
// activation are deferred until that node is quiet, which keeps port
// wiring stable under a running activation. Packets stranded by an edge
// removal are reported through OnPacketDropped, never silently lost.
package network
