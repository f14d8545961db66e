package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/simulator"
)

func TestPromPublisherPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	pub, err := NewPromPublisherWithRegistry(reg)
	require.NoError(t, err)

	pub.Publish(simulator.Metrics{
		ClockSeconds:    3600,
		AvgWaitSeconds:  12.5,
		P95WaitSeconds:  40,
		OrdersCreated:   100,
		OrdersCompleted: 90,
		QueueDepth:      2,
		BusyVehicles:    3,
		FleetSize:       5,
		ActualPerHour:   100,
	})

	assert.Equal(t, 12.5, testutil.ToFloat64(pub.avgWait))
	assert.Equal(t, 40.0, testutil.ToFloat64(pub.p95Wait))
	assert.Equal(t, 100.0, testutil.ToFloat64(pub.created))
	assert.Equal(t, 5.0, testutil.ToFloat64(pub.fleetSize))
}

func TestPromPublisherDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromPublisherWithRegistry(reg)
	require.NoError(t, err)

	// second registration reuses the existing collectors
	pub, err := NewPromPublisherWithRegistry(reg)
	require.NoError(t, err)
	pub.Publish(simulator.Metrics{FleetSize: 7})
	assert.Equal(t, 7.0, testutil.ToFloat64(pub.fleetSize))
}
