package domain

import "time"

// EngagementTier classifies the connection success rate against fixed
// policy thresholds.
type EngagementTier string

const (
	EngagementHigh     EngagementTier = "high"
	EngagementModerate EngagementTier = "moderate"
	EngagementLow      EngagementTier = "low"
)

// Engagement thresholds, in percent. Policy constants, not derived.
const (
	HighEngagementThreshold     = 70.0
	ModerateEngagementThreshold = 40.0
)

// GoodDwellSeconds is the average dwell above which visitors are
// considered engaged (5 minutes).
const GoodDwellSeconds = 300.0

// HourCount is one hourly-breakdown row.
type HourCount struct {
	Hour  string `json:"hour"` // "2006-01-02 15:00"
	Count int    `json:"count"`
}

// Recommendation is one actionable item in the report.
type Recommendation struct {
	Priority    string   `json:"priority"` // "high", "medium", "low"
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// SessionReport aggregates all analytics derived from a snapshot. It is a
// pure function of the snapshot it was built from.
type SessionReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	SessionStart  time.Time `json:"session_start"`
	DurationHours float64   `json:"duration_hours"`

	UniqueDevices    int     `json:"unique_devices"`
	TotalProbes      int     `json:"total_probes"`
	TotalConnections int     `json:"total_connections"`
	ConnectionRate   float64 `json:"connection_rate"`
	AvgDevices       float64 `json:"avg_devices"`
	PeakConcurrent   int     `json:"peak_concurrent"`

	PeakHour      string `json:"peak_hour"` // empty when no detections
	PeakHourCount int    `json:"peak_hour_count"`

	AvgDwellSeconds float64 `json:"avg_dwell_seconds"`
	MaxDwellSeconds float64 `json:"max_dwell_seconds"`
	AvgRSSI         float64 `json:"avg_rssi"`

	HourlyBreakdown []HourCount    `json:"hourly_breakdown"` // ascending by hour key
	Engagement      EngagementTier `json:"engagement"`

	Recommendations []Recommendation `json:"recommendations"`
}
