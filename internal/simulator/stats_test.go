package simulator

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

func completedOrder(wait, total float64) models.Order {
	return models.Order{
		CreatedAt:   0,
		AssignedAt:  wait,
		CompletedAt: total,
		Status:      models.OrderStatusCompleted,
	}
}

func TestRollingStatsIncrementalMeanMatchesExact(t *testing.T) {
	rs := NewRollingStats(2000, 100)
	rng := rand.New(rand.NewSource(1))

	var waits, totals []float64
	for i := 0; i < 5000; i++ {
		w := rng.Float64() * 600
		tt := w + 300 + rng.Float64()*600
		waits = append(waits, w)
		totals = append(totals, tt)
		rs.RecordCompletion(completedOrder(w, tt))
	}

	assert.InDelta(t, stat.Mean(waits, nil), rs.AvgWait(), 1e-9)
	assert.InDelta(t, stat.Mean(totals, nil), rs.AvgTotal(), 1e-9)
	assert.Equal(t, int64(5000), rs.Completed())
}

func TestRollingStatsP95FullWindow(t *testing.T) {
	rs := NewRollingStats(2000, 10)
	for i := 1; i <= 2000; i++ {
		rs.RecordCompletion(completedOrder(float64(i), float64(i)+100))
	}

	// sorted window is 1..2000; the 95th percentile sample sits at
	// zero-based index 1899
	assert.Equal(t, 1900.0, rs.ForceP95())
}

func TestRollingStatsP95EvictsOldest(t *testing.T) {
	rs := NewRollingStats(100, 10)
	for i := 1; i <= 150; i++ {
		rs.RecordCompletion(completedOrder(float64(i), float64(i)))
	}

	// window now holds 51..150
	assert.Equal(t, 145.0, rs.ForceP95())
	assert.Equal(t, 100, rs.WindowFill())
}

func TestRollingStatsP95PartialWindow(t *testing.T) {
	rs := NewRollingStats(2000, 10)
	rs.RecordCompletion(completedOrder(42, 42))
	assert.Equal(t, 42.0, rs.ForceP95())

	rs.RecordCompletion(completedOrder(10, 10))
	// two samples: ceil(0.95*2)-1 = 1 -> the larger one
	assert.Equal(t, 42.0, rs.ForceP95())
}

func TestRollingStatsP95MatchesGonumEmpirical(t *testing.T) {
	rs := NewRollingStats(500, 10)
	rng := rand.New(rand.NewSource(7))

	var waits []float64
	for i := 0; i < 500; i++ {
		w := rng.ExpFloat64() * 120
		waits = append(waits, w)
		rs.RecordCompletion(completedOrder(w, w))
	}
	sort.Float64s(waits)

	want := stat.Quantile(0.95, stat.Empirical, waits, nil)
	assert.InDelta(t, want, rs.ForceP95(), 1e-9)
}

func TestRollingStatsP95Throttle(t *testing.T) {
	rs := NewRollingStats(100, 10)
	rs.RecordCompletion(completedOrder(10, 10))
	require.Equal(t, 10.0, rs.ForceP95())

	// within the throttle interval the cached value is served even though
	// a new sample arrived
	rs.RecordCompletion(completedOrder(500, 500))
	assert.Equal(t, 10.0, rs.P95Wait())
	assert.Equal(t, 500.0, rs.ForceP95())
}

func TestRollingStatsEmpty(t *testing.T) {
	rs := NewRollingStats(100, 10)
	assert.Equal(t, 0.0, rs.ForceP95())
	assert.Equal(t, 0.0, rs.AvgWait())
	assert.Equal(t, int64(0), rs.QueueDepth())
	assert.Empty(t, rs.History())
}

func TestRollingStatsQueueDepth(t *testing.T) {
	rs := NewRollingStats(100, 10)
	rs.RecordCreated()
	rs.RecordCreated()
	rs.RecordCreated()
	rs.RecordStarted()
	assert.Equal(t, int64(2), rs.QueueDepth())
}

func TestRollingStatsHistoryCapKeepsNewest(t *testing.T) {
	rs := NewRollingStats(100, 5)
	for i := 1; i <= 8; i++ {
		o := completedOrder(float64(i), float64(i))
		o.ID = int64(i)
		rs.RecordCompletion(o)
	}

	history := rs.History()
	require.Len(t, history, 5)
	// oldest first, capped to the 5 most recent completions
	assert.Equal(t, int64(4), history[0].ID)
	assert.Equal(t, int64(8), history[4].ID)
}
