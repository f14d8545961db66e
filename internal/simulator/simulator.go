package simulator

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/logging"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// OutputDestination receives serialized events keyed by topic.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// MetricsPublisher receives each metrics snapshot as it is taken.
type MetricsPublisher interface {
	Publish(Metrics)
}

// Metrics is a point-in-time view of the rolling statistics.
type Metrics struct {
	ClockSeconds    float64 `json:"clock_seconds"`
	AvgWaitSeconds  float64 `json:"avg_wait_seconds"`
	AvgTotalSeconds float64 `json:"avg_total_seconds"`
	P95WaitSeconds  float64 `json:"p95_wait_seconds"`
	OrdersAttempted int64   `json:"orders_attempted"`
	OrdersCreated   int64   `json:"orders_created"`
	OrdersCompleted int64   `json:"orders_completed"`
	QueueDepth      int64   `json:"queue_depth"`
	BusyVehicles    int     `json:"busy_vehicles"`
	FleetSize       int     `json:"fleet_size"`
	ActualPerHour   float64 `json:"actual_per_hour"`
}

// VehicleState is a copy of one vehicle's rendering surface. The segment
// slice is cloned so renderers never share memory with the engine.
type VehicleState struct {
	ID              int                    `json:"id"`
	Status          string                 `json:"status"`
	NextAvailableAt float64                `json:"next_available_at"`
	Position        models.Location        `json:"position"`
	Segments        []models.FlightSegment `json:"segments,omitempty"`
}

// Simulator owns one independent simulation run: clock, fleet, queues and
// statistics. Several simulators can run side by side, which is what the
// fleet size search does.
type Simulator struct {
	mu sync.Mutex

	config *models.Config
	runID  string

	clock       float64
	carry       float64
	nextOrderID int64

	rng  *rand.Rand
	fake faker.Faker

	vehicles    []*models.Vehicle
	picker      VehiclePicker
	starts      *models.ScheduleQueue
	completions *models.ScheduleQueue
	stats       *RollingStats

	output  OutputDestination
	metrics MetricsPublisher

	log zerolog.Logger
}

func New(config *models.Config) *Simulator {
	s := &Simulator{
		config: config,
		picker: EarliestAvailablePicker{},
		log:    logging.New("simulator"),
	}
	s.resetLocked()
	return s
}

// SetOutput attaches an event sink. The caller keeps ownership and closes it.
func (s *Simulator) SetOutput(output OutputDestination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = output
}

// SetMetricsPublisher attaches a snapshot consumer such as the Prometheus
// publisher.
func (s *Simulator) SetMetricsPublisher(pub MetricsPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = pub
}

// SetPicker swaps the vehicle selection policy.
func (s *Simulator) SetPicker(p VehiclePicker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picker = p
}

// Reset returns the run to a blank state under the current configuration:
// clock zero, fresh fleet, empty queues, zeroed statistics and a new run ID.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Simulator) resetLocked() {
	seed := s.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.runID = cuid.New()
	s.clock = 0
	s.carry = 0
	s.nextOrderID = 1
	s.rng = rand.New(rand.NewSource(seed))
	s.fake = faker.NewWithSeed(rand.NewSource(seed))
	s.vehicles = models.NewFleet(s.config.FleetSize)
	s.starts = models.NewScheduleQueue()
	s.completions = models.NewScheduleQueue()
	s.stats = NewRollingStats(s.config.StatsWindow, s.config.HistoryLimit)
}

// Configure applies a partial reconfiguration mid-run. Rate, speed, radius
// and handling-time changes affect future orders only; fleet size takes
// effect on the next Reset.
func (s *Simulator) Configure(opts models.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Apply(opts)
}

// Advance moves the simulation clock forward by delta seconds: orders are
// generated against the pre-advance clock, the clock moves, then every
// service start and completion that became due is drained in time order.
// Non-positive deltas are no-ops.
func (s *Simulator) Advance(delta float64) {
	if delta <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(delta)
}

func (s *Simulator) advanceLocked(delta float64) {
	s.generateOrders(delta)
	s.clock += delta
	s.drainDue()
}

func (s *Simulator) drainDue() {
	for _, entry := range s.starts.DequeueDue(s.clock) {
		entry.Order.Status = models.OrderStatusEnRoute
		s.stats.RecordStarted()
	}

	for _, entry := range s.completions.DequeueDue(s.clock) {
		order := entry.Order
		order.Status = models.OrderStatusCompleted
		s.stats.RecordCompletion(*order)
		if v := s.vehicleByID(order.VehicleID); v != nil {
			v.PruneSegments(s.clock)
		}
		s.emitOrderCompleted(order)
	}
}

func (s *Simulator) vehicleByID(id int) *models.Vehicle {
	if id < 1 || id > len(s.vehicles) {
		return nil
	}
	return s.vehicles[id-1]
}

// Clock returns the current simulation time in seconds.
func (s *Simulator) Clock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// RunID identifies the current run in emitted events.
func (s *Simulator) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// RunToHorizon advances in fixed one-second steps until the clock reaches
// the target simulation time. It never touches the wall clock, so long
// horizons evaluate as fast as the hardware allows.
func (s *Simulator) RunToHorizon(target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.clock < target {
		step := target - s.clock
		if step > 1 {
			step = 1
		}
		s.advanceLocked(step)
	}
}

// configSnapshot copies the configuration under the engine lock, so loop
// code never reads fields a concurrent Configure may be rewriting.
func (s *Simulator) configSnapshot() models.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.config
}

// Run drives the simulation against the wall clock until the context is
// cancelled. Each tick advances the clock by elapsed wall time times the
// configured scale, so rendering stays smooth at any speedup.
func (s *Simulator) Run(ctx context.Context) error {
	cfg := s.configSnapshot()

	if s.output == nil {
		output, err := DetermineOutputDestination(&cfg)
		if err != nil {
			return err
		}
		s.SetOutput(output)
		defer func() {
			if err := output.Close(); err != nil {
				s.log.Error().Err(err).Msg("failed to close output")
			}
			s.SetOutput(nil)
		}()
	}

	s.log.Info().
		Str("run_id", s.RunID()).
		Int("fleet_size", cfg.FleetSize).
		Float64("orders_per_hour", cfg.OrdersPerHour).
		Float64("time_scale", cfg.TimeScale).
		Msg("simulation started")

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	lastWall := time.Now()
	lastSnapshot := lastWall

	for {
		select {
		case <-ctx.Done():
			s.log.Info().
				Float64("clock_sec", s.Clock()).
				Int64("orders_completed", s.SnapshotMetrics().OrdersCompleted).
				Msg("simulation stopped")
			return nil
		case now := <-ticker.C:
			// re-read so time-scale changes apply from the next tick on
			cfg = s.configSnapshot()
			delta := now.Sub(lastWall).Seconds() * cfg.TimeScale
			lastWall = now
			s.Advance(delta)

			if now.Sub(lastSnapshot) >= cfg.SnapshotInterval {
				lastSnapshot = now
				m := s.SnapshotMetrics()
				if s.metrics != nil {
					s.metrics.Publish(m)
				}
				s.emitSnapshot(m)
				s.log.Debug().
					Float64("clock_sec", m.ClockSeconds).
					Int64("completed", m.OrdersCompleted).
					Float64("avg_wait_sec", m.AvgWaitSeconds).
					Float64("p95_wait_sec", m.P95WaitSeconds).
					Msg("snapshot")
			}
		}
	}
}

// SnapshotMetrics assembles the current metrics. Safe to call from outside
// the engine loop at render rates; the percentile recompute is throttled.
func (s *Simulator) SnapshotMetrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(false)
}

func (s *Simulator) snapshotLocked(force bool) Metrics {
	busy := 0
	for _, v := range s.vehicles {
		if v.Busy(s.clock) {
			busy++
		}
	}

	p95 := s.stats.P95Wait()
	if force {
		p95 = s.stats.ForceP95()
	}

	actualRate := 0.0
	if s.clock > 0 {
		actualRate = float64(s.stats.Created()) / (s.clock / 3600)
	}

	return Metrics{
		ClockSeconds:    s.clock,
		AvgWaitSeconds:  s.stats.AvgWait(),
		AvgTotalSeconds: s.stats.AvgTotal(),
		P95WaitSeconds:  p95,
		OrdersAttempted: s.stats.Attempted(),
		OrdersCreated:   s.stats.Created(),
		OrdersCompleted: s.stats.Completed(),
		QueueDepth:      s.stats.QueueDepth(),
		BusyVehicles:    busy,
		FleetSize:       len(s.vehicles),
		ActualPerHour:   actualRate,
	}
}

// VehicleStates copies the rendering surface of every vehicle: status,
// interpolated position and the pending flight segments.
func (s *Simulator) VehicleStates() []VehicleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	depot := models.Location{Lat: s.config.DepotLat, Lon: s.config.DepotLon}
	states := make([]VehicleState, len(s.vehicles))
	for i, v := range s.vehicles {
		segments := make([]models.FlightSegment, len(v.Segments))
		copy(segments, v.Segments)
		states[i] = VehicleState{
			ID:              v.ID,
			Status:          v.Status(s.clock),
			NextAvailableAt: v.NextAvailableAt,
			Position:        v.PositionAt(s.clock, depot),
			Segments:        segments,
		}
	}
	return states
}

// ExportCompletedOrders returns the retained completed orders, oldest first.
// The history is capped by history_limit, so exports stay bounded.
func (s *Simulator) ExportCompletedOrders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.History()
}

// wallTime maps a simulation timestamp onto the configured start date, which
// keeps date-partitioned sinks meaningful.
func (s *Simulator) wallTime(simSeconds float64) time.Time {
	return s.config.StartDate.Add(time.Duration(simSeconds * float64(time.Second)))
}

func (s *Simulator) emitOrderCreated(order *models.Order) {
	if s.output == nil {
		return
	}
	event := OrderCreatedEvent{
		BaseEvent:      NewBaseEvent(models.TopicOrderCreated, s.wallTime(order.CreatedAt), s.runID),
		OrderID:        order.ID,
		Recipient:      order.Recipient,
		Lat:            order.Destination.Lat,
		Lon:            order.Destination.Lon,
		DistanceKm:     order.DistanceKm,
		VehicleID:      int32(order.VehicleID),
		CreatedAtSec:   order.CreatedAt,
		AssignedAtSec:  order.AssignedAt,
		CompletedAtSec: order.CompletedAt,
		Status:         order.Status,
	}
	s.writeEvent(models.TopicOrderCreated, event)
}

func (s *Simulator) emitOrderCompleted(order *models.Order) {
	if s.output == nil {
		return
	}
	event := OrderCompletedEvent{
		BaseEvent:      NewBaseEvent(models.TopicOrderCompleted, s.wallTime(order.CompletedAt), s.runID),
		OrderID:        order.ID,
		VehicleID:      int32(order.VehicleID),
		Recipient:      order.Recipient,
		Lat:            order.Destination.Lat,
		Lon:            order.Destination.Lon,
		DistanceKm:     order.DistanceKm,
		CreatedAtSec:   order.CreatedAt,
		AssignedAtSec:  order.AssignedAt,
		CompletedAtSec: order.CompletedAt,
		WaitSec:        order.WaitSeconds(),
		TotalSec:       order.TotalSeconds(),
		Status:         order.Status,
	}
	s.writeEvent(models.TopicOrderCompleted, event)
}

func (s *Simulator) emitSnapshot(m Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.output == nil {
		return
	}
	event := MetricsSnapshotEvent{
		BaseEvent:       NewBaseEvent(models.TopicMetricsSnapshot, s.wallTime(m.ClockSeconds), s.runID),
		ClockSec:        m.ClockSeconds,
		AvgWaitSec:      m.AvgWaitSeconds,
		AvgTotalSec:     m.AvgTotalSeconds,
		P95WaitSec:      m.P95WaitSeconds,
		OrdersAttempted: m.OrdersAttempted,
		OrdersCreated:   m.OrdersCreated,
		OrdersCompleted: m.OrdersCompleted,
		QueueDepth:      m.QueueDepth,
		BusyVehicles:    int32(m.BusyVehicles),
		FleetSize:       int32(m.FleetSize),
		ActualPerHour:   m.ActualPerHour,
	}
	s.writeEvent(models.TopicMetricsSnapshot, event)
}

// writeEvent serializes and ships one event. Sink failures are logged and
// skipped so a slow or broken sink never stalls the clock.
func (s *Simulator) writeEvent(topic string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("failed to serialize event")
		return
	}
	if err := s.output.WriteMessage(topic, payload); err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("failed to write event")
	}
}
