package models

// FlightSegment is one straight-line leg of a round trip. Segments are
// immutable once scheduled; renderers interpolate positions from copies of
// them without further coordination.
type FlightSegment struct {
	OrderID  int64    `json:"order_id"`
	From     Location `json:"from"`
	To       Location `json:"to"`
	StartAt  float64  `json:"start_at"`
	EndAt    float64  `json:"end_at"`
	Outbound bool     `json:"outbound"`
}

// Vehicle is a single drone operating out of the depot. Availability is a
// point on the simulation clock rather than a state flag: a vehicle is busy
// exactly when its next available time lies in the future.
type Vehicle struct {
	ID              int             `json:"id"`
	NextAvailableAt float64         `json:"next_available_at"`
	Segments        []FlightSegment `json:"segments,omitempty"`
}

func (v *Vehicle) Busy(now float64) bool {
	return v.NextAvailableAt > now
}

func (v *Vehicle) Status(now float64) string {
	if v.Busy(now) {
		return VehicleStatusBusy
	}
	return VehicleStatusIdle
}

// AppendSegments records the legs of a newly scheduled trip. Trips are
// scheduled in start order, so the slice stays chronologically sorted.
func (v *Vehicle) AppendSegments(segments ...FlightSegment) {
	v.Segments = append(v.Segments, segments...)
}

// PruneSegments drops legs that ended at or before now.
func (v *Vehicle) PruneSegments(now float64) {
	kept := v.Segments[:0]
	for _, seg := range v.Segments {
		if seg.EndAt > now {
			kept = append(kept, seg)
		}
	}
	v.Segments = kept
}

// PositionAt interpolates the vehicle position for rendering. During an
// active leg the position moves linearly between the endpoints; between legs
// the vehicle holds at the start endpoint of the next leg (loading, on-site
// service); with nothing scheduled it sits at the depot.
func (v *Vehicle) PositionAt(now float64, depot Location) Location {
	for _, seg := range v.Segments {
		if now >= seg.StartAt && now <= seg.EndAt {
			frac := 0.0
			if seg.EndAt > seg.StartAt {
				frac = (now - seg.StartAt) / (seg.EndAt - seg.StartAt)
			}
			return Location{
				Lat: seg.From.Lat + (seg.To.Lat-seg.From.Lat)*frac,
				Lon: seg.From.Lon + (seg.To.Lon-seg.From.Lon)*frac,
			}
		}
		if now < seg.StartAt {
			return seg.From
		}
	}
	return depot
}

// NewFleet numbers vehicles from 1 so that zero stays the unassigned marker
// on orders.
func NewFleet(size int) []*Vehicle {
	fleet := make([]*Vehicle, size)
	for i := range fleet {
		fleet[i] = &Vehicle{ID: i + 1}
	}
	return fleet
}
