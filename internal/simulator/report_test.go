package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

func TestBuildReportKnownSamples(t *testing.T) {
	// waits 10, 20, 30, 40; totals wait+300; distances 1..4
	var orders []models.Order
	for i := 1; i <= 4; i++ {
		w := float64(i) * 10
		orders = append(orders, models.Order{
			ID:          int64(i),
			CreatedAt:   0,
			AssignedAt:  w,
			CompletedAt: w + 300,
			DistanceKm:  float64(i),
			Status:      models.OrderStatusCompleted,
		})
	}

	r := BuildReport(orders)
	assert.Equal(t, 4, r.Orders)
	assert.Equal(t, 25.0, r.AvgWaitSec)
	assert.InDelta(t, 12.909944, r.StdDevWaitSec, 1e-6)
	assert.Equal(t, 20.0, r.MedianWaitSec)
	assert.Equal(t, 40.0, r.P95WaitSec)
	assert.Equal(t, 40.0, r.MaxWaitSec)
	assert.Equal(t, 325.0, r.AvgTotalSec)
	assert.Equal(t, 2.5, r.AvgDistanceKm)
	assert.Equal(t, 20.0, r.FlownKm)
}

func TestBuildReportEmpty(t *testing.T) {
	assert.Equal(t, Report{}, BuildReport(nil))
}

func TestBuildReportSingleOrder(t *testing.T) {
	r := BuildReport([]models.Order{{
		CreatedAt:   0,
		AssignedAt:  12,
		CompletedAt: 112,
		DistanceKm:  3,
	}})

	assert.Equal(t, 1, r.Orders)
	assert.Equal(t, 12.0, r.AvgWaitSec)
	assert.Equal(t, 0.0, r.StdDevWaitSec)
	assert.Equal(t, 12.0, r.P95WaitSec)
	assert.Equal(t, 6.0, r.FlownKm)
}

func TestBuildReportAgreesWithRollingStats(t *testing.T) {
	cfg := testConfig()
	cfg.OrdersPerHour = 900
	cfg.FleetSize = 4

	s := New(cfg)
	s.RunToHorizon(3600)

	orders := s.ExportCompletedOrders()
	require.NotEmpty(t, orders)
	m := s.SnapshotMetrics()
	r := BuildReport(orders)

	// history and window both cover every completion in this short run,
	// so the exact report and the streaming stats must agree
	require.LessOrEqual(t, len(orders), cfg.StatsWindow)
	assert.Equal(t, int(m.OrdersCompleted), r.Orders)
	assert.InDelta(t, m.AvgWaitSeconds, r.AvgWaitSec, 1e-9)
	assert.InDelta(t, m.AvgTotalSeconds, r.AvgTotalSec, 1e-9)
	assert.InDelta(t, m.P95WaitSeconds, r.P95WaitSec, 1e-9)
}
