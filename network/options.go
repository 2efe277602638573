package network

import (
	"log/slog"
	"time"

	"github.com/HondryTravis/noflo/metric"
)

const (
	defaultChannelCapacity = 1024
	defaultStopTimeout     = 10 * time.Second
	defaultWorkers         = 16
	defaultActivationQueue = 4096
)

type options struct {
	delay              bool
	subscribeGraph     bool
	strictBackpressure bool
	channelCapacity    int
	stopTimeout        time.Duration
	workers            int
	logger             *slog.Logger
	metrics            *metric.MetricsRegistry
}

func defaultOptions() options {
	return options{
		subscribeGraph:  true,
		channelCapacity: defaultChannelCapacity,
		stopTimeout:     defaultStopTimeout,
		workers:         defaultWorkers,
		logger:          slog.Default(),
	}
}

// Option configures a Network.
type Option func(*options)

// WithDelay defers wiring and startup: New returns an unwired handle
// and the caller drives Connect and Start explicitly.
func WithDelay() Option {
	return func(o *options) { o.delay = true }
}

// WithoutGraphSubscription disables live graph edits: the topology is
// frozen at the snapshot taken during Connect.
func WithoutGraphSubscription() Option {
	return func(o *options) { o.subscribeGraph = false }
}

// WithStrictBackpressure makes every channel fail pushes at capacity
// instead of growing past it.
func WithStrictBackpressure() Option {
	return func(o *options) { o.strictBackpressure = true }
}

// WithChannelCapacity sets the per-channel buffer capacity.
func WithChannelCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.channelCapacity = capacity
		}
	}
}

// WithStopTimeout bounds how long Stop waits for in-flight activations
// before force-ending them.
func WithStopTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.stopTimeout = timeout
		}
	}
}

// WithWorkers sets the activation worker count.
func WithWorkers(workers int) Option {
	return func(o *options) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRegistry enables Prometheus metrics for the network.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(o *options) { o.metrics = registry }
}
