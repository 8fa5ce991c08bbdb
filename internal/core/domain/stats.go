package domain

import "time"

// StatsSample is a point-in-time read of the firmware's aggregate counters.
type StatsSample struct {
	Timestamp        time.Time `json:"timestamp"`
	Connected        int       `json:"connected"`
	Nearby           int       `json:"nearby"`
	TotalProbes      int       `json:"total_probes"`
	TotalConnections int       `json:"total_connections"`
}

// TotalDevices returns the number of devices present at sample time.
func (s StatsSample) TotalDevices() int {
	return s.Connected + s.Nearby
}

// ConnectionRate computes the connection success percentage for the given
// running totals. Zero probes yields 0, never a division fault.
func ConnectionRate(totalConnections, totalProbes int) float64 {
	if totalProbes <= 0 {
		return 0
	}
	return float64(totalConnections) / float64(totalProbes) * 100
}

// SessionSnapshot is a consistent, read-only copy of the full aggregation
// state. Consumers may iterate it freely; it shares no memory with the
// live session.
type SessionSnapshot struct {
	SessionID    string    `json:"session_id"`
	SessionStart time.Time `json:"session_start"`
	LastUpdated  time.Time `json:"last_updated"`

	Devices      map[string]DeviceRecord `json:"devices"`
	HourlyCounts map[string]int          `json:"hourly_counts"`

	TotalProbes      int     `json:"total_probes"`
	TotalConnections int     `json:"total_connections"`
	ConnectionRate   float64 `json:"connection_rate"`

	// Window holds the most recent samples for dashboard visualizations.
	// History is the unbounded series used for reporting and forecasting.
	Window  []StatsSample `json:"window"`
	History []StatsSample `json:"history"`
}

// UniqueDevices returns the count of distinct devices ever seen.
func (s *SessionSnapshot) UniqueDevices() int {
	return len(s.Devices)
}

// Latest returns the most recent stats sample, or a zero sample if none.
func (s *SessionSnapshot) Latest() (StatsSample, bool) {
	if len(s.History) == 0 {
		return StatsSample{}, false
	}
	return s.History[len(s.History)-1], true
}

// IsStale reports whether the snapshot is older than the given TTL. The
// presentation layer uses this to flag a stalled feed.
func (s *SessionSnapshot) IsStale(ttl time.Duration) bool {
	return time.Since(s.LastUpdated) > ttl
}
