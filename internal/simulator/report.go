package simulator

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// Report summarizes a finished run from the retained order history. Unlike
// the rolling metrics it is exact over the orders it covers, so it doubles
// as an offline cross-check of the streaming layer.
type Report struct {
	Orders        int     `json:"orders"`
	AvgWaitSec    float64 `json:"avg_wait_sec"`
	StdDevWaitSec float64 `json:"stddev_wait_sec"`
	MedianWaitSec float64 `json:"median_wait_sec"`
	P95WaitSec    float64 `json:"p95_wait_sec"`
	MaxWaitSec    float64 `json:"max_wait_sec"`
	AvgTotalSec   float64 `json:"avg_total_sec"`
	AvgDistanceKm float64 `json:"avg_distance_km"`
	FlownKm       float64 `json:"flown_km"`
}

// BuildReport computes exact summary statistics over completed orders.
func BuildReport(orders []models.Order) Report {
	if len(orders) == 0 {
		return Report{}
	}

	waits := make([]float64, len(orders))
	totals := make([]float64, len(orders))
	distances := make([]float64, len(orders))
	for i, o := range orders {
		waits[i] = o.WaitSeconds()
		totals[i] = o.TotalSeconds()
		distances[i] = o.DistanceKm
	}
	sort.Float64s(waits)

	stddev := 0.0
	if len(waits) > 1 {
		stddev = stat.StdDev(waits, nil)
	}

	return Report{
		Orders:        len(orders),
		AvgWaitSec:    stat.Mean(waits, nil),
		StdDevWaitSec: stddev,
		MedianWaitSec: stat.Quantile(0.5, stat.Empirical, waits, nil),
		P95WaitSec:    stat.Quantile(0.95, stat.Empirical, waits, nil),
		MaxWaitSec:    waits[len(waits)-1],
		AvgTotalSec:   stat.Mean(totals, nil),
		AvgDistanceKm: stat.Mean(distances, nil),
		// both flight legs count toward flown distance
		FlownKm: 2 * floats.Sum(distances),
	}
}
