package session

import (
	"time"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// DefaultWindowSize keeps the last two minutes of one-second samples on
// the dashboard.
const DefaultWindowSize = 120

// AggregateCounters holds the cumulative probe/connection totals and the
// two stats series: a bounded FIFO window for recent-window visuals and
// the unbounded history used by reports and forecasts. Like the device
// registry it is unsynchronized; the owning store serializes access.
type AggregateCounters struct {
	totalProbes      int
	totalConnections int

	window   []domain.StatsSample
	capacity int
	history  []domain.StatsSample
}

// NewAggregateCounters creates counters with the given window capacity.
// A non-positive capacity falls back to DefaultWindowSize.
func NewAggregateCounters(windowSize int) *AggregateCounters {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &AggregateCounters{capacity: windowSize}
}

// Apply folds one stats event in. The running totals are overwritten with
// whatever the source reported; the firmware owns those counters and we
// trust its latest word, even across a mid-session reset.
func (c *AggregateCounters) Apply(ev domain.StatsEvent, now time.Time) domain.StatsSample {
	c.totalProbes = ev.TotalProbes
	c.totalConnections = ev.TotalConnections

	sample := domain.StatsSample{
		Timestamp:        now,
		Connected:        ev.Connected,
		Nearby:           ev.Nearby,
		TotalProbes:      ev.TotalProbes,
		TotalConnections: ev.TotalConnections,
	}

	c.window = append(c.window, sample)
	if len(c.window) > c.capacity {
		c.window = c.window[1:]
	}
	c.history = append(c.history, sample)

	return sample
}

// ConnectionRate returns the connection success percentage, 0 when no
// probes have been reported.
func (c *AggregateCounters) ConnectionRate() float64 {
	return domain.ConnectionRate(c.totalConnections, c.totalProbes)
}

// Totals returns the latest reported running counters.
func (c *AggregateCounters) Totals() (probes, connections int) {
	return c.totalProbes, c.totalConnections
}

// SnapshotWindow returns a copy of the bounded recent window.
func (c *AggregateCounters) SnapshotWindow() []domain.StatsSample {
	out := make([]domain.StatsSample, len(c.window))
	copy(out, c.window)
	return out
}

// SnapshotHistory returns a copy of the full sample history.
func (c *AggregateCounters) SnapshotHistory() []domain.StatsSample {
	out := make([]domain.StatsSample, len(c.history))
	copy(out, c.history)
	return out
}
