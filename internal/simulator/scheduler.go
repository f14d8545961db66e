package simulator

import (
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// VehiclePicker selects which vehicle serves the next order. The engine
// ships with the earliest-available policy; alternative policies plug in
// without touching the trip arithmetic.
type VehiclePicker interface {
	Pick(vehicles []*models.Vehicle) *models.Vehicle
}

// EarliestAvailablePicker picks the vehicle that frees up first, ties broken
// by lowest ID. With an interchangeable fleet this minimizes mean wait, so
// it is the default policy.
type EarliestAvailablePicker struct{}

func (EarliestAvailablePicker) Pick(vehicles []*models.Vehicle) *models.Vehicle {
	if len(vehicles) == 0 {
		return nil
	}
	best := vehicles[0]
	for _, v := range vehicles[1:] {
		if v.NextAvailableAt < best.NextAvailableAt {
			best = v
		}
	}
	return best
}

// tripPlan fixes the complete timeline of an order at assignment. Nothing
// about an assigned trip changes afterwards.
type tripPlan struct {
	StartAt     float64
	FlightSec   float64
	CompletedAt float64
}

// planTrip computes service start, one-way flight time and completion for an
// order served by the given vehicle. The busy window covers loading, both
// flight legs, on-site service and turnaround.
func planTrip(cfg *models.Config, v *models.Vehicle, order *models.Order) tripPlan {
	start := order.CreatedAt
	if v.NextAvailableAt > start {
		start = v.NextAvailableAt
	}

	flight := order.DistanceKm / cfg.CruiseSpeedKmh * 3600
	busy := cfg.LoadTimeSec + flight + cfg.ServiceTimeSec + flight + cfg.TurnaroundTimeSec

	return tripPlan{
		StartAt:     start,
		FlightSec:   flight,
		CompletedAt: start + busy,
	}
}

// assign binds the order to the picked vehicle, stamps its timeline and
// appends the two flight legs the renderer interpolates from.
func (s *Simulator) assign(order *models.Order) *models.Vehicle {
	vehicle := s.picker.Pick(s.vehicles)
	plan := planTrip(s.config, vehicle, order)

	order.VehicleID = vehicle.ID
	order.AssignedAt = plan.StartAt
	order.CompletedAt = plan.CompletedAt
	order.Status = models.OrderStatusScheduled

	vehicle.NextAvailableAt = plan.CompletedAt

	depot := models.Location{Lat: s.config.DepotLat, Lon: s.config.DepotLon}
	outboundStart := plan.StartAt + s.config.LoadTimeSec
	returnEnd := plan.CompletedAt - s.config.TurnaroundTimeSec
	vehicle.AppendSegments(
		models.FlightSegment{
			OrderID:  order.ID,
			From:     depot,
			To:       order.Destination,
			StartAt:  outboundStart,
			EndAt:    outboundStart + plan.FlightSec,
			Outbound: true,
		},
		models.FlightSegment{
			OrderID: order.ID,
			From:    order.Destination,
			To:      depot,
			StartAt: returnEnd - plan.FlightSec,
			EndAt:   returnEnd,
		},
	)

	s.starts.Enqueue(plan.StartAt, order)
	s.completions.Enqueue(plan.CompletedAt, order)
	return vehicle
}
