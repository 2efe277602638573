// Package metric provides Prometheus-based observability for the runtime.
//
// A MetricsRegistry owns a dedicated prometheus.Registry preloaded with the
// core runtime metrics (network status, packet delivery and drops, component
// activations, channel depth, errors) plus Go runtime collectors. Networks
// and supporting infrastructure register additional service-specific metrics
// through the MetricsRegistrar interface; duplicate registrations are
// rejected with a classified error instead of panicking.
//
// Server exposes the registry over HTTP for scraping.
package metric
