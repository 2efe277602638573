package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HondryTravis/noflo/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())

	// Core metrics are gatherable immediately.
	registry.Metrics.RecordNetworkStatus("test", 2)
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() == "noflo_network_status" {
			found = true
		}
	}
	assert.True(t, found, "core network status metric registered")
}

func TestRegisterCounter_Duplicate(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "test",
	})

	require.NoError(t, registry.RegisterCounter("network", "test_counter_total", counter))

	err := registry.RegisterCounter("network", "test_counter_total", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "test",
	})

	require.NoError(t, registry.RegisterGauge("network", "test_gauge", gauge))
	assert.True(t, registry.Unregister("network", "test_gauge"))
	assert.False(t, registry.Unregister("network", "test_gauge"))

	// Re-registration succeeds after unregister.
	assert.NoError(t, registry.RegisterGauge("network", "test_gauge", gauge))
}

func TestRecordHelpers(t *testing.T) {
	metrics := NewMetrics()

	// Helpers must not panic and must touch the right label sets.
	metrics.RecordPacketDelivered("net", "data")
	metrics.RecordPacketDropped("net")
	metrics.RecordActivation("net", "comp", "success")
	metrics.RecordChannelDepth("net", "a.out->b.in", 3)
	metrics.RecordError("net", "protocol")

	assert.Equal(t, 1.0, testCounterValue(t, metrics.PacketsDelivered.WithLabelValues("net", "data")))
}

func testCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, counter.Write(&m))
	return m.GetCounter().GetValue()
}
