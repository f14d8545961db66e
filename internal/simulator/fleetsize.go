package simulator

import (
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/logging"
	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// FleetSearchOptions bounds the fleet size search. Zero values fall back to
// a floor of 1 and the fleet size cap.
type FleetSearchOptions struct {
	Floor   int
	Ceiling int
	// OnProbe observes each candidate evaluation, e.g. for progress output.
	OnProbe func(fleetSize int, p95 float64)
}

// FindMinimumFleetSize binary searches for the smallest fleet whose P95 wait
// stays strictly below the target. Each probe runs its own offline
// simulation to the horizon, so probes share no state with the caller's run.
// Growing the fleet never worsens waits, which is what makes the search
// sound. If even the ceiling misses the target, the ceiling is returned.
func FindMinimumFleetSize(cfg *models.Config, targetP95Sec, horizonSec float64, opts FleetSearchOptions) int {
	log := logging.New("fleetsize")

	floor := opts.Floor
	if floor < 1 {
		floor = 1
	}
	ceiling := opts.Ceiling
	if ceiling < floor {
		ceiling = models.MaxFleetSize
	}
	if ceiling > models.MaxFleetSize {
		ceiling = models.MaxFleetSize
	}

	lo, hi := floor, ceiling
	for lo < hi {
		mid := (lo + hi) / 2
		p95 := probeFleetSize(cfg, mid, horizonSec)
		if opts.OnProbe != nil {
			opts.OnProbe(mid, p95)
		}
		log.Info().
			Int("fleet_size", mid).
			Float64("p95_wait_sec", p95).
			Float64("target_sec", targetP95Sec).
			Msg("probe evaluated")

		if p95 < targetP95Sec {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// probeFleetSize evaluates one candidate size with a fresh simulator and
// returns its unthrottled P95 at the horizon.
func probeFleetSize(cfg *models.Config, size int, horizonSec float64) float64 {
	probeCfg := cfg.Clone()
	probeCfg.FleetSize = size
	probe := New(probeCfg)
	probe.RunToHorizon(horizonSec)

	probe.mu.Lock()
	defer probe.mu.Unlock()
	return probe.stats.ForceP95()
}
