package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the runtime-level metrics shared by every network
type Metrics struct {
	NetworkStatus      *prometheus.GaugeVec
	PacketsDelivered   *prometheus.CounterVec
	PacketsDropped     *prometheus.CounterVec
	ActivationsTotal   *prometheus.CounterVec
	ActivationDuration *prometheus.HistogramVec
	ChannelDepth       *prometheus.GaugeVec
	ErrorsTotal        *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all runtime metrics
func NewMetrics() *Metrics {
	return &Metrics{
		NetworkStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "noflo",
				Subsystem: "network",
				Name:      "status",
				Help:      "Network status (0=created, 1=starting, 2=running, 3=stopping, 4=stopped, 5=errored)",
			},
			[]string{"network"},
		),

		PacketsDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "noflo",
				Subsystem: "packets",
				Name:      "delivered_total",
				Help:      "Total number of packets delivered across channels",
			},
			[]string{"network", "kind"},
		),

		PacketsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "noflo",
				Subsystem: "packets",
				Name:      "dropped_total",
				Help:      "Total number of packets dropped on channel detach",
			},
			[]string{"network"},
		),

		ActivationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "noflo",
				Subsystem: "components",
				Name:      "activations_total",
				Help:      "Total number of component activations",
			},
			[]string{"network", "component", "status"},
		),

		ActivationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "noflo",
				Subsystem: "components",
				Name:      "activation_duration_seconds",
				Help:      "Component activation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"network", "component"},
		),

		ChannelDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "noflo",
				Subsystem: "channels",
				Name:      "depth",
				Help:      "Current number of packets pending on a channel",
			},
			[]string{"network", "channel"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "noflo",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of runtime errors",
			},
			[]string{"network", "type"},
		),
	}
}

// RecordNetworkStatus updates the network status metric
func (m *Metrics) RecordNetworkStatus(network string, status int) {
	m.NetworkStatus.WithLabelValues(network).Set(float64(status))
}

// RecordPacketDelivered increments the delivered packet counter
func (m *Metrics) RecordPacketDelivered(network, kind string) {
	m.PacketsDelivered.WithLabelValues(network, kind).Inc()
}

// RecordPacketDropped increments the dropped packet counter
func (m *Metrics) RecordPacketDropped(network string) {
	m.PacketsDropped.WithLabelValues(network).Inc()
}

// RecordActivation increments the activation counter
func (m *Metrics) RecordActivation(network, component, status string) {
	m.ActivationsTotal.WithLabelValues(network, component, status).Inc()
}

// RecordActivationDuration records the wall time of one activation
func (m *Metrics) RecordActivationDuration(network, component string, duration time.Duration) {
	m.ActivationDuration.WithLabelValues(network, component).Observe(duration.Seconds())
}

// RecordChannelDepth updates the pending-packet gauge for a channel
func (m *Metrics) RecordChannelDepth(network, channel string, depth int) {
	m.ChannelDepth.WithLabelValues(network, channel).Set(float64(depth))
}

// RecordError increments the error counter
func (m *Metrics) RecordError(network, errorType string) {
	m.ErrorsTotal.WithLabelValues(network, errorType).Inc()
}
