package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/simulator"
)

// PromPublisher mirrors each metrics snapshot into Prometheus gauges. The
// simulation clock is authoritative, so snapshot values are set rather than
// accumulated.
type PromPublisher struct {
	clockSeconds  prometheus.Gauge
	avgWait       prometheus.Gauge
	avgTotal      prometheus.Gauge
	p95Wait       prometheus.Gauge
	attempted     prometheus.Gauge
	created       prometheus.Gauge
	completed     prometheus.Gauge
	queueDepth    prometheus.Gauge
	busyVehicles  prometheus.Gauge
	fleetSize     prometheus.Gauge
	actualPerHour prometheus.Gauge
}

// NewPromPublisher registers the simulation gauges on the default registerer.
func NewPromPublisher() (*PromPublisher, error) {
	return NewPromPublisherWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromPublisherWithRegistry registers the gauges on the provided
// registerer. A nil registerer defaults to the global one.
func NewPromPublisherWithRegistry(reg prometheus.Registerer) (*PromPublisher, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PromPublisher{
		clockSeconds:  newGauge("sim_clock_seconds", "Simulation clock in seconds"),
		avgWait:       newGauge("sim_avg_wait_seconds", "Running mean order wait in simulated seconds"),
		avgTotal:      newGauge("sim_avg_total_seconds", "Running mean creation-to-delivery time in simulated seconds"),
		p95Wait:       newGauge("sim_p95_wait_seconds", "95th percentile wait over the recent window"),
		attempted:     newGauge("sim_orders_attempted_total", "Order generation attempts"),
		created:       newGauge("sim_orders_created_total", "Orders accepted and assigned"),
		completed:     newGauge("sim_orders_completed_total", "Orders delivered"),
		queueDepth:    newGauge("sim_queue_depth", "Orders created but not yet started"),
		busyVehicles:  newGauge("sim_busy_vehicles", "Vehicles currently on a trip"),
		fleetSize:     newGauge("sim_fleet_size", "Vehicles in the active fleet"),
		actualPerHour: newGauge("sim_actual_orders_per_hour", "Achieved creation rate"),
	}

	for _, g := range []*prometheus.Gauge{
		&p.clockSeconds, &p.avgWait, &p.avgTotal, &p.p95Wait,
		&p.attempted, &p.created, &p.completed, &p.queueDepth,
		&p.busyVehicles, &p.fleetSize, &p.actualPerHour,
	} {
		if err := reg.Register(*g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*g = are.ExistingCollector.(prometheus.Gauge)
			} else {
				return nil, err
			}
		}
	}

	return p, nil
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

// Publish sets every gauge from the snapshot.
func (p *PromPublisher) Publish(m simulator.Metrics) {
	p.clockSeconds.Set(m.ClockSeconds)
	p.avgWait.Set(m.AvgWaitSeconds)
	p.avgTotal.Set(m.AvgTotalSeconds)
	p.p95Wait.Set(m.P95WaitSeconds)
	p.attempted.Set(float64(m.OrdersAttempted))
	p.created.Set(float64(m.OrdersCreated))
	p.completed.Set(float64(m.OrdersCompleted))
	p.queueDepth.Set(float64(m.QueueDepth))
	p.busyVehicles.Set(float64(m.BusyVehicles))
	p.fleetSize.Set(float64(m.FleetSize))
	p.actualPerHour.Set(m.ActualPerHour)
}
