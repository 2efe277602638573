// Package graph provides the declarative topology the network executes:
// nodes naming component types, edges wiring ports, and initial packets
// injected at startup.
//
// Graph is an in-memory Source. All mutation goes through its methods,
// serialized one at a time; each mutation is fully applied before the
// corresponding event is handed to subscribers, and subscribers see
// events in mutation order. The network consumes the same event stream
// as any external editor, so there is never concurrent direct mutation
// of runtime state.
//
// Definitions can be loaded from JSON or YAML files with the loader.
package graph
