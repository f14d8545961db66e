package models

// Order is a single delivery request served by one round trip from the depot.
// All timestamps are simulation seconds since the start of the run.
type Order struct {
	ID          int64    `json:"id"`
	Recipient   string   `json:"recipient,omitempty"`
	Destination Location `json:"destination"`
	DistanceKm  float64  `json:"distance_km"`
	CreatedAt   float64  `json:"created_at"`
	AssignedAt  float64  `json:"assigned_at"`
	CompletedAt float64  `json:"completed_at"`
	VehicleID   int      `json:"vehicle_id"` // 0 until a vehicle is assigned
	Status      string   `json:"status"`
}

func (o *Order) Assigned() bool {
	return o.VehicleID != 0
}

// WaitSeconds is the time the order spent waiting for a vehicle to begin
// serving it.
func (o *Order) WaitSeconds() float64 {
	return o.AssignedAt - o.CreatedAt
}

// TotalSeconds is the time from creation to completed delivery.
func (o *Order) TotalSeconds() float64 {
	return o.CompletedAt - o.CreatedAt
}

type EventMessage struct {
	Topic   string
	Message []byte
}
