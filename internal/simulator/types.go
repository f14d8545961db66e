package simulator

import (
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go/schema"
)

// BaseEvent is the common structure for all emitted events
type BaseEvent struct {
	Timestamp int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	RunID     string `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// OrderCreatedEvent is emitted when an order is accepted. Assignment happens
// at creation, so the event already names the vehicle and the planned times.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID        int64   `json:"orderId" parquet:"name=orderId,type=INT64"`
	Recipient      string  `json:"recipient,omitempty" parquet:"name=recipient,type=BYTE_ARRAY,convertedtype=UTF8"`
	Lat            float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon            float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
	DistanceKm     float64 `json:"distanceKm" parquet:"name=distanceKm,type=DOUBLE"`
	VehicleID      int32   `json:"vehicleId" parquet:"name=vehicleId,type=INT32"`
	CreatedAtSec   float64 `json:"createdAtSec" parquet:"name=createdAtSec,type=DOUBLE"`
	AssignedAtSec  float64 `json:"assignedAtSec" parquet:"name=assignedAtSec,type=DOUBLE"`
	CompletedAtSec float64 `json:"completedAtSec" parquet:"name=completedAtSec,type=DOUBLE"`
	Status         string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// OrderCompletedEvent is emitted when the round trip for an order finishes.
type OrderCompletedEvent struct {
	BaseEvent
	OrderID        int64   `json:"orderId" parquet:"name=orderId,type=INT64"`
	VehicleID      int32   `json:"vehicleId" parquet:"name=vehicleId,type=INT32"`
	Recipient      string  `json:"recipient,omitempty" parquet:"name=recipient,type=BYTE_ARRAY,convertedtype=UTF8"`
	Lat            float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon            float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
	DistanceKm     float64 `json:"distanceKm" parquet:"name=distanceKm,type=DOUBLE"`
	CreatedAtSec   float64 `json:"createdAtSec" parquet:"name=createdAtSec,type=DOUBLE"`
	AssignedAtSec  float64 `json:"assignedAtSec" parquet:"name=assignedAtSec,type=DOUBLE"`
	CompletedAtSec float64 `json:"completedAtSec" parquet:"name=completedAtSec,type=DOUBLE"`
	WaitSec        float64 `json:"waitSec" parquet:"name=waitSec,type=DOUBLE"`
	TotalSec       float64 `json:"totalSec" parquet:"name=totalSec,type=DOUBLE"`
	Status         string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// MetricsSnapshotEvent is a periodic dump of the rolling metrics.
type MetricsSnapshotEvent struct {
	BaseEvent
	ClockSec        float64 `json:"clockSec" parquet:"name=clockSec,type=DOUBLE"`
	AvgWaitSec      float64 `json:"avgWaitSec" parquet:"name=avgWaitSec,type=DOUBLE"`
	AvgTotalSec     float64 `json:"avgTotalSec" parquet:"name=avgTotalSec,type=DOUBLE"`
	P95WaitSec      float64 `json:"p95WaitSec" parquet:"name=p95WaitSec,type=DOUBLE"`
	OrdersAttempted int64   `json:"ordersAttempted" parquet:"name=ordersAttempted,type=INT64"`
	OrdersCreated   int64   `json:"ordersCreated" parquet:"name=ordersCreated,type=INT64"`
	OrdersCompleted int64   `json:"ordersCompleted" parquet:"name=ordersCompleted,type=INT64"`
	QueueDepth      int64   `json:"queueDepth" parquet:"name=queueDepth,type=INT64"`
	BusyVehicles    int32   `json:"busyVehicles" parquet:"name=busyVehicles,type=INT32"`
	FleetSize       int32   `json:"fleetSize" parquet:"name=fleetSize,type=INT32"`
	ActualPerHour   float64 `json:"actualPerHour" parquet:"name=actualPerHour,type=DOUBLE"`
}

func GetSchema(eventType string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch eventType {
	case "order_created_events":
		sh, err = schema.NewSchemaHandlerFromStruct(new(OrderCreatedEvent))
	case "order_completed_events":
		sh, err = schema.NewSchemaHandlerFromStruct(new(OrderCompletedEvent))
	case "metrics_snapshot_events":
		sh, err = schema.NewSchemaHandlerFromStruct(new(MetricsSnapshotEvent))
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", eventType, err)
	}

	return sh, nil
}

func NewBaseEvent(eventType string, timestamp time.Time, runID string) BaseEvent {
	return BaseEvent{
		Timestamp: timestamp.Unix(),
		EventType: eventType,
		RunID:     runID,
	}
}
