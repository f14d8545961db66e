package models

const (
	OrderStatusScheduled = "scheduled"
	OrderStatusEnRoute   = "en_route"
	OrderStatusCompleted = "completed"
	OrderStatusRejected  = "rejected"

	VehicleStatusIdle = "idle"
	VehicleStatusBusy = "busy"

	TopicOrderCreated    = "order_created_events"
	TopicOrderCompleted  = "order_completed_events"
	TopicMetricsSnapshot = "metrics_snapshot_events"
)

const (
	// MaxFleetSize caps fleet reconfiguration and the fleet size search.
	MaxFleetSize = 1000

	DefaultFleetSize       = 5
	DefaultCruiseSpeedKmh  = 100.0
	DefaultLoadTimeSec     = 45.0
	DefaultServiceTimeSec  = 30.0
	DefaultTurnaroundSec   = 60.0
	DefaultAvgRadiusKm     = 3.5
	DefaultMaxRangeKm      = 8.0
	DefaultOrdersPerHour   = 40.0
	DefaultTimeScale       = 60.0
	DefaultStatsWindowSize = 2000
	DefaultHistoryLimit    = 10000
)
