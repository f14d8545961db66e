package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

func TestEarliestAvailablePickerBreaksTiesByLowestID(t *testing.T) {
	fleet := models.NewFleet(3)
	picker := EarliestAvailablePicker{}

	assert.Equal(t, 1, picker.Pick(fleet).ID)

	fleet[0].NextAvailableAt = 500
	assert.Equal(t, 2, picker.Pick(fleet).ID)

	fleet[1].NextAvailableAt = 500
	assert.Equal(t, 3, picker.Pick(fleet).ID)

	fleet[2].NextAvailableAt = 100
	assert.Equal(t, 3, picker.Pick(fleet).ID)

	assert.Nil(t, picker.Pick(nil))
}

func TestPlanTripArithmetic(t *testing.T) {
	cfg := testConfig() // 100km/h cruise, 45/30/60s handling
	vehicle := &models.Vehicle{ID: 1}
	order := &models.Order{ID: 1, CreatedAt: 100, DistanceKm: 5}

	plan := planTrip(cfg, vehicle, order)
	assert.Equal(t, 100.0, plan.StartAt)
	assert.Equal(t, 180.0, plan.FlightSec)
	// 45 + 180 + 30 + 180 + 60 = 495s busy
	assert.Equal(t, 595.0, plan.CompletedAt)

	vehicle.NextAvailableAt = 400
	plan = planTrip(cfg, vehicle, order)
	assert.Equal(t, 400.0, plan.StartAt)
	assert.Equal(t, 895.0, plan.CompletedAt)
}

func TestAssignFixesTimelineAndSegments(t *testing.T) {
	cfg := testConfig()
	cfg.FleetSize = 2
	cfg.OrdersPerHour = 0

	s := New(cfg)
	dest := models.Location{Lat: cfg.DepotLat + 0.03, Lon: cfg.DepotLon}
	order := &models.Order{ID: 7, CreatedAt: 50, DistanceKm: 5, Destination: dest}
	s.stats.RecordCreated()
	vehicle := s.assign(order)

	require.Equal(t, 1, vehicle.ID)
	assert.Equal(t, models.OrderStatusScheduled, order.Status)
	assert.Equal(t, 1, order.VehicleID)
	assert.Equal(t, 50.0, order.AssignedAt)
	assert.Equal(t, 545.0, order.CompletedAt)
	assert.Equal(t, 545.0, vehicle.NextAvailableAt)

	require.Len(t, vehicle.Segments, 2)
	outbound := vehicle.Segments[0]
	assert.True(t, outbound.Outbound)
	assert.Equal(t, int64(7), outbound.OrderID)
	assert.Equal(t, 95.0, outbound.StartAt) // load finishes 45s after start
	assert.Equal(t, 275.0, outbound.EndAt)
	assert.Equal(t, dest, outbound.To)

	back := vehicle.Segments[1]
	assert.False(t, back.Outbound)
	assert.Equal(t, 305.0, back.StartAt) // service gap sits between the legs
	assert.Equal(t, 485.0, back.EndAt)   // turnaround runs until completion
	assert.Equal(t, dest, back.From)

	// second order goes to the idle vehicle and starts at its own creation
	order2 := &models.Order{ID: 8, CreatedAt: 60, DistanceKm: 5, Destination: dest}
	s.stats.RecordCreated()
	vehicle2 := s.assign(order2)
	assert.Equal(t, 2, vehicle2.ID)
	assert.Equal(t, 60.0, order2.AssignedAt)
}

// TestGreedyAssignmentMinimizesEveryWait checks earliest-available against
// every possible vehicle mapping of a small order sequence: with an
// interchangeable fleet no reassignment achieves a smaller wait for any order,
// hence none achieves a smaller mean or max.
func TestGreedyAssignmentMinimizesEveryWait(t *testing.T) {
	cfg := testConfig()
	cfg.CruiseSpeedKmh = 3600 // one flight second per km
	cfg.LoadTimeSec = 0
	cfg.ServiceTimeSec = 0
	cfg.TurnaroundTimeSec = 0

	created := []float64{0, 5, 12, 13, 40, 41}
	busy := []float64{30, 50, 20, 45, 25, 60}
	const fleet = 3

	orderAt := func(i int) *models.Order {
		return &models.Order{CreatedAt: created[i], DistanceKm: busy[i] / 2}
	}

	picker := EarliestAvailablePicker{}
	vehicles := models.NewFleet(fleet)
	greedy := make([]float64, len(created))
	for i := range created {
		v := picker.Pick(vehicles)
		plan := planTrip(cfg, v, orderAt(i))
		greedy[i] = plan.StartAt - created[i]
		v.NextAvailableAt = plan.CompletedAt
	}

	mappings := 1
	for range created {
		mappings *= fleet
	}
	for m := 0; m < mappings; m++ {
		avail := make([]float64, fleet)
		code := m
		for i := range created {
			v := &models.Vehicle{NextAvailableAt: avail[code%fleet]}
			plan := planTrip(cfg, v, orderAt(i))
			wait := plan.StartAt - created[i]
			require.LessOrEqual(t, greedy[i], wait+1e-9,
				"mapping %d gives order %d a shorter wait", m, i)
			avail[code%fleet] = plan.CompletedAt
			code /= fleet
		}
	}
}
