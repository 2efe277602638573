// Package testutil provides test helpers for flow networks: scriptable
// mock components, an emitting source, a recording sink, and an
// observer that collects network lifecycle events for assertions.
//
// The helpers carry no domain assumptions; tests wire them into graphs
// exactly like production components.
package testutil
