package simulator

import (
	"math"
	"sort"
	"time"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

// p95RecomputeInterval bounds how often the percentile sort runs when
// snapshots are polled at render rates.
const p95RecomputeInterval = 250 * time.Millisecond

// RollingStats aggregates delivery metrics in bounded memory. Means are
// updated incrementally, the 95th percentile comes from a fixed-size ring of
// recent wait samples, and the completed-order history is capped. Memory use
// is therefore independent of how long the simulation runs.
type RollingStats struct {
	waitMean   float64
	waitCount  int64
	totalMean  float64
	totalCount int64

	window    []float64
	windowPos int
	windowLen int

	attempted int64
	created   int64
	started   int64
	completed int64

	p95Cache float64
	p95Stale bool
	p95At    time.Time

	history      []models.Order
	historyPos   int
	historyLen   int
	historyLimit int
}

func NewRollingStats(windowSize, historyLimit int) *RollingStats {
	return &RollingStats{
		window:       make([]float64, windowSize),
		history:      make([]models.Order, historyLimit),
		historyLimit: historyLimit,
	}
}

// RecordAttempt counts a generation attempt, whether or not it produced an
// order.
func (rs *RollingStats) RecordAttempt() {
	rs.attempted++
}

// RecordCreated counts an accepted order.
func (rs *RollingStats) RecordCreated() {
	rs.created++
}

// RecordStarted counts an order whose service has begun.
func (rs *RollingStats) RecordStarted() {
	rs.started++
}

// RecordCompletion folds a completed order into the running means, the
// percentile window and the capped history.
func (rs *RollingStats) RecordCompletion(order models.Order) {
	rs.completed++

	rs.waitCount++
	rs.waitMean += (order.WaitSeconds() - rs.waitMean) / float64(rs.waitCount)

	rs.totalCount++
	rs.totalMean += (order.TotalSeconds() - rs.totalMean) / float64(rs.totalCount)

	rs.window[rs.windowPos] = order.WaitSeconds()
	rs.windowPos = (rs.windowPos + 1) % len(rs.window)
	if rs.windowLen < len(rs.window) {
		rs.windowLen++
	}
	rs.p95Stale = true

	rs.history[rs.historyPos] = order
	rs.historyPos = (rs.historyPos + 1) % rs.historyLimit
	if rs.historyLen < rs.historyLimit {
		rs.historyLen++
	}
}

// P95Wait returns the 95th percentile of recent wait times. The underlying
// sort runs at most every 250ms of wall time; ForceP95 bypasses the
// throttle.
func (rs *RollingStats) P95Wait() float64 {
	if !rs.p95Stale || time.Since(rs.p95At) < p95RecomputeInterval {
		return rs.p95Cache
	}
	return rs.ForceP95()
}

// ForceP95 recomputes the percentile immediately.
func (rs *RollingStats) ForceP95() float64 {
	if rs.windowLen == 0 {
		rs.p95Cache = 0
		rs.p95Stale = false
		rs.p95At = time.Now()
		return 0
	}

	sorted := make([]float64, rs.windowLen)
	copy(sorted, rs.window[:rs.windowLen])
	sort.Float64s(sorted)

	// nearest-rank: the sample below which 95% of the window falls
	idx := int(math.Ceil(0.95*float64(rs.windowLen))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= rs.windowLen {
		idx = rs.windowLen - 1
	}

	rs.p95Cache = sorted[idx]
	rs.p95Stale = false
	rs.p95At = time.Now()
	return rs.p95Cache
}

func (rs *RollingStats) AvgWait() float64  { return rs.waitMean }
func (rs *RollingStats) AvgTotal() float64 { return rs.totalMean }
func (rs *RollingStats) Attempted() int64  { return rs.attempted }
func (rs *RollingStats) Created() int64    { return rs.created }
func (rs *RollingStats) Started() int64    { return rs.started }
func (rs *RollingStats) Completed() int64  { return rs.completed }
func (rs *RollingStats) QueueDepth() int64 { return rs.created - rs.started }
func (rs *RollingStats) WindowFill() int   { return rs.windowLen }
func (rs *RollingStats) HistorySize() int  { return rs.historyLen }

// History returns the retained completed orders, oldest first.
func (rs *RollingStats) History() []models.Order {
	out := make([]models.Order, 0, rs.historyLen)
	if rs.historyLen < rs.historyLimit {
		out = append(out, rs.history[:rs.historyLen]...)
		return out
	}
	out = append(out, rs.history[rs.historyPos:]...)
	out = append(out, rs.history[:rs.historyPos]...)
	return out
}
