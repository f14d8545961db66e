package simulator

import (
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/geo"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// generateOrders converts elapsed simulated time into discrete creation
// attempts through a fractional accumulator, so any rate works with any
// tick length. Draws that land beyond the range limit are dropped without
// retry, which is what makes the actual rate observable against the
// configured one.
func (s *Simulator) generateOrders(delta float64) {
	s.carry += s.config.OrdersPerHour / 3600 * delta

	depot := models.Location{Lat: s.config.DepotLat, Lon: s.config.DepotLon}
	for s.carry >= 1 {
		s.carry--
		s.stats.RecordAttempt()

		dest, distance := geo.SampleInDisk(s.rng, depot, s.config.AvgRadiusKm, s.config.MaxRangeKm)
		if distance > s.config.MaxRangeKm {
			s.log.Debug().
				Float64("distance_km", distance).
				Float64("max_range_km", s.config.MaxRangeKm).
				Msg("rejected out-of-range draw")
			continue
		}

		order := &models.Order{
			ID:          s.nextOrderID,
			Destination: dest,
			DistanceKm:  distance,
			CreatedAt:   s.clock,
		}
		s.nextOrderID++
		if s.config.SyntheticRecipients {
			order.Recipient = s.fake.Person().Name()
		}

		s.stats.RecordCreated()
		vehicle := s.assign(order)
		s.emitOrderCreated(order)

		s.log.Debug().
			Int64("order_id", order.ID).
			Int("vehicle_id", vehicle.ID).
			Float64("wait_sec", order.WaitSeconds()).
			Msg("order scheduled")
	}
}
