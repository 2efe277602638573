// Package noflo is a flow-based programming runtime: programs are
// directed graphs whose nodes are components and whose edges carry
// packets through buffered channels.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            Network                  │  Wiring, lifecycle,
//	│ (connect, start, stop, live edits)  │  single scheduling loop
//	└─────────────────────────────────────┘
//	           ↓ activates
//	┌─────────────────────────────────────┐
//	│           Components                │  Declared ports,
//	│  (sources, transforms, sinks)       │  one activation entry point
//	└─────────────────────────────────────┘
//	           ↓ communicate via
//	┌─────────────────────────────────────┐
//	│            Channels                 │  FIFO buffers, brackets,
//	│   (pull/strict or push/legacy)      │  backpressure
//	└─────────────────────────────────────┘
//
// The network runs one scheduling goroutine that serializes packet
// deliveries, activation completions and graph mutations, while the
// activations themselves execute concurrently on a worker pool. That
// split gives parallel component execution with an exact "finished"
// condition: no packets pending, no brackets open, no activations in
// flight.
//
// # Packages
//
// Core runtime:
//   - packet: the atomic message unit (data and bracket markers)
//   - component: port contracts, activation context, registry
//   - graph: declarative topology, change events, JSON/YAML loading
//   - network: channels, scheduler, lifecycle, live graph edits
//
// Component library:
//   - components: builtin Inject, Repeat, Counter, LogSink
//
// Infrastructure:
//   - errors: classified errors and sentinel variables
//   - metric: Prometheus registry and HTTP exposition
//   - pkg/queue: generic bounded FIFO backing every channel
//   - pkg/worker: generic worker pool executing activations
//   - testutil: recording/mock components and a lifecycle observer
//
// # Usage
//
//	registry := component.NewRegistry()
//	components.Register(registry)
//
//	g, _ := graph.LoadFile("pipeline.json")
//	n, _ := network.New(g.Name(), g, registry)
//
//	// ... the network is already running; stop when done.
//	n.Stop()
//
// The noflo binary (cmd/noflo) wraps the same flow with flags, logging
// and a metrics endpoint:
//
//	noflo --graph=pipeline.json --strict --metrics-port=9090
package noflo
