// Package components provides the builtin component library: small
// general-purpose components registered through the component registry
// the same way user-defined ones are.
//
// Builtins:
//   - core/Inject: emits configured payloads once at startup
//   - core/Repeat: forwards every packet from "in" to "out"
//   - core/Counter: emits a running count of data packets
//   - core/LogSink: logs received packets through the structured logger
package components
