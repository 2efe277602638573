// Package errors provides standardized error handling patterns for the noflo
// runtime.
//
// # Overview
//
// The package implements a three-class error classification system: Transient
// (temporary, retryable), Invalid (bad input or graph, non-retryable), and
// Fatal (unrecoverable, stops the network). Classification integrates with
// Go's standard error handling, supporting errors.Is(), errors.As() and
// wrapping chains.
//
// # Runtime error taxonomy
//
// Five sentinel errors map the runtime's failure surface:
//
//   - ErrProtocol: flow protocol violations (bracket mismatch, illegal
//     double-attach on a non-addressable port)
//   - ErrBackpressure: strict-mode channel capacity overflow
//   - ErrComponentNotFound: registry lookup miss
//   - ErrActivationFailed: uncaught failure inside a component activation
//   - ErrNetworkState: operation invalid for the network's current status
//
// # Error wrapping pattern
//
// All wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Channel", "Push", "enqueue")
//	errors.WrapInvalid(err, "Port", "Attach", "duplicate attach check")
//	errors.WrapFatal(err, "Network", "Start", "node resolution")
//
// The generic Wrap() preserves the original error's classification.
//
// Use the sentinel variables instead of creating custom error messages so
// that callers can branch on errors.Is without string matching.
package errors
