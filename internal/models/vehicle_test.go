package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFleetNumbersFromOne(t *testing.T) {
	fleet := NewFleet(3)
	require.Len(t, fleet, 3)
	for i, v := range fleet {
		assert.Equal(t, i+1, v.ID)
		assert.False(t, v.Busy(0))
		assert.Equal(t, VehicleStatusIdle, v.Status(0))
	}
}

func TestVehicleBusyWindow(t *testing.T) {
	v := &Vehicle{ID: 1, NextAvailableAt: 100}
	assert.True(t, v.Busy(0))
	assert.True(t, v.Busy(99.9))
	assert.False(t, v.Busy(100))
	assert.Equal(t, VehicleStatusBusy, v.Status(50))
	assert.Equal(t, VehicleStatusIdle, v.Status(100))
}

func TestVehiclePositionAt(t *testing.T) {
	depot := Location{Lat: 0, Lon: 0}
	dest := Location{Lat: 1, Lon: 1}
	v := &Vehicle{ID: 1}
	v.AppendSegments(
		FlightSegment{OrderID: 1, From: depot, To: dest, StartAt: 100, EndAt: 200, Outbound: true},
		FlightSegment{OrderID: 1, From: dest, To: depot, StartAt: 230, EndAt: 330},
	)

	// before the first leg the vehicle is still loading at the depot
	assert.Equal(t, depot, v.PositionAt(50, depot))

	// halfway through the outbound leg
	mid := v.PositionAt(150, depot)
	assert.InDelta(t, 0.5, mid.Lat, 1e-9)
	assert.InDelta(t, 0.5, mid.Lon, 1e-9)

	// between the legs the vehicle holds at the destination during service
	assert.Equal(t, dest, v.PositionAt(215, depot))

	// after the final leg it sits at the depot
	assert.Equal(t, depot, v.PositionAt(400, depot))
}

func TestVehiclePruneSegments(t *testing.T) {
	v := &Vehicle{ID: 1}
	v.AppendSegments(
		FlightSegment{OrderID: 1, StartAt: 0, EndAt: 10},
		FlightSegment{OrderID: 1, StartAt: 12, EndAt: 22},
		FlightSegment{OrderID: 2, StartAt: 30, EndAt: 40},
	)

	v.PruneSegments(22)
	require.Len(t, v.Segments, 1)
	assert.Equal(t, int64(2), v.Segments[0].OrderID)
}
