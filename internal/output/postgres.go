package output

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS orders_created (
	run_id           TEXT NOT NULL,
	order_id         BIGINT NOT NULL,
	recipient        TEXT,
	location         TEXT,
	distance_km      DOUBLE PRECISION,
	vehicle_id       INTEGER,
	created_at_sec   DOUBLE PRECISION,
	assigned_at_sec  DOUBLE PRECISION,
	completed_at_sec DOUBLE PRECISION,
	status           TEXT,
	event_time       TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS orders_completed (
	run_id           TEXT NOT NULL,
	order_id         BIGINT NOT NULL,
	recipient        TEXT,
	location         TEXT,
	distance_km      DOUBLE PRECISION,
	vehicle_id       INTEGER,
	created_at_sec   DOUBLE PRECISION,
	assigned_at_sec  DOUBLE PRECISION,
	completed_at_sec DOUBLE PRECISION,
	wait_sec         DOUBLE PRECISION,
	total_sec        DOUBLE PRECISION,
	status           TEXT,
	event_time       TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS metrics_snapshots (
	run_id           TEXT NOT NULL,
	clock_sec        DOUBLE PRECISION,
	avg_wait_sec     DOUBLE PRECISION,
	avg_total_sec    DOUBLE PRECISION,
	p95_wait_sec     DOUBLE PRECISION,
	orders_attempted BIGINT,
	orders_created   BIGINT,
	orders_completed BIGINT,
	queue_depth      BIGINT,
	busy_vehicles    INTEGER,
	fleet_size       INTEGER,
	actual_per_hour  DOUBLE PRECISION,
	event_time       TIMESTAMPTZ
);`

type PostgresOutput struct {
	pool *pgxpool.Pool
}

func NewPostgresOutput(config *models.DatabaseConfig) (*PostgresOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &PostgresOutput{pool: pool}, nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch topic {
	case models.TopicOrderCreated:
		err = p.insertOrderCreated(ctx, event)
	case models.TopicOrderCompleted:
		err = p.insertOrderCompleted(ctx, event)
	case models.TopicMetricsSnapshot:
		err = p.insertSnapshot(ctx, event)
	default:
		return fmt.Errorf("no table mapped for topic %s", topic)
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", topic, err)
	}
	return nil
}

func (p *PostgresOutput) insertOrderCreated(ctx context.Context, event map[string]interface{}) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO orders_created
		 (run_id, order_id, recipient, location, distance_km, vehicle_id,
		  created_at_sec, assigned_at_sec, completed_at_sec, status, event_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		str(event, "runId"),
		int64Of(event, "orderId"),
		str(event, "recipient"),
		pointOf(event),
		floatOf(event, "distanceKm"),
		int64Of(event, "vehicleId"),
		floatOf(event, "createdAtSec"),
		floatOf(event, "assignedAtSec"),
		floatOf(event, "completedAtSec"),
		str(event, "status"),
		timeOf(event),
	)
	return err
}

func (p *PostgresOutput) insertOrderCompleted(ctx context.Context, event map[string]interface{}) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO orders_completed
		 (run_id, order_id, recipient, location, distance_km, vehicle_id,
		  created_at_sec, assigned_at_sec, completed_at_sec, wait_sec,
		  total_sec, status, event_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		str(event, "runId"),
		int64Of(event, "orderId"),
		str(event, "recipient"),
		pointOf(event),
		floatOf(event, "distanceKm"),
		int64Of(event, "vehicleId"),
		floatOf(event, "createdAtSec"),
		floatOf(event, "assignedAtSec"),
		floatOf(event, "completedAtSec"),
		floatOf(event, "waitSec"),
		floatOf(event, "totalSec"),
		str(event, "status"),
		timeOf(event),
	)
	return err
}

func (p *PostgresOutput) insertSnapshot(ctx context.Context, event map[string]interface{}) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO metrics_snapshots
		 (run_id, clock_sec, avg_wait_sec, avg_total_sec, p95_wait_sec,
		  orders_attempted, orders_created, orders_completed, queue_depth,
		  busy_vehicles, fleet_size, actual_per_hour, event_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		str(event, "runId"),
		floatOf(event, "clockSec"),
		floatOf(event, "avgWaitSec"),
		floatOf(event, "avgTotalSec"),
		floatOf(event, "p95WaitSec"),
		int64Of(event, "ordersAttempted"),
		int64Of(event, "ordersCreated"),
		int64Of(event, "ordersCompleted"),
		int64Of(event, "queueDepth"),
		int64Of(event, "busyVehicles"),
		int64Of(event, "fleetSize"),
		floatOf(event, "actualPerHour"),
		timeOf(event),
	)
	return err
}

// BulkInsertOrders copies a completed-order export into orders_completed in
// one round trip. Used by batch runs instead of per-event inserts.
func (p *PostgresOutput) BulkInsertOrders(ctx context.Context, runID string, startDate time.Time, orders []models.Order) error {
	rows := make([][]interface{}, len(orders))
	for i, o := range orders {
		rows[i] = []interface{}{
			runID,
			o.ID,
			o.Recipient,
			o.Destination.Point(),
			o.DistanceKm,
			o.VehicleID,
			o.CreatedAt,
			o.AssignedAt,
			o.CompletedAt,
			o.WaitSeconds(),
			o.TotalSeconds(),
			o.Status,
			startDate.Add(time.Duration(o.CompletedAt * float64(time.Second))),
		}
	}

	_, err := p.pool.CopyFrom(ctx,
		pgx.Identifier{"orders_completed"},
		[]string{"run_id", "order_id", "recipient", "location", "distance_km",
			"vehicle_id", "created_at_sec", "assigned_at_sec", "completed_at_sec",
			"wait_sec", "total_sec", "status", "event_time"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy orders: %w", err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	p.pool.Close()
	return nil
}

func str(event map[string]interface{}, key string) string {
	s, _ := event[key].(string)
	return s
}

func floatOf(event map[string]interface{}, key string) float64 {
	f, _ := event[key].(float64)
	return f
}

func int64Of(event map[string]interface{}, key string) int64 {
	return int64(floatOf(event, key))
}

func pointOf(event map[string]interface{}) string {
	return fmt.Sprintf("POINT(%f %f)", floatOf(event, "lon"), floatOf(event, "lat"))
}

func timeOf(event map[string]interface{}) time.Time {
	return time.Unix(int64Of(event, "timestamp"), 0)
}
