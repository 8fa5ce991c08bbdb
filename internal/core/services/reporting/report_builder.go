// Package reporting derives session analytics and recommendations from
// snapshots.
package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// ReportBuilder turns a session snapshot into a full analytics report.
// Building a report never touches live state; it only reads the snapshot
// it was handed.
type ReportBuilder struct {
	engine *RecommendationEngine
}

// NewReportBuilder creates a report builder with the default
// recommendation engine.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{engine: NewRecommendationEngine()}
}

// Build computes every report metric from the snapshot.
func (b *ReportBuilder) Build(snap domain.SessionSnapshot) domain.SessionReport {
	now := time.Now()

	report := domain.SessionReport{
		ID:          uuid.New().String(),
		GeneratedAt: now,

		SessionStart:  snap.SessionStart,
		DurationHours: now.Sub(snap.SessionStart).Hours(),

		UniqueDevices:    snap.UniqueDevices(),
		TotalProbes:      snap.TotalProbes,
		TotalConnections: snap.TotalConnections,
		ConnectionRate:   snap.ConnectionRate,
	}

	report.AvgDevices, report.PeakConcurrent = presenceStats(snap.History)
	report.PeakHour, report.PeakHourCount = peakHour(snap.HourlyCounts)
	report.AvgDwellSeconds, report.MaxDwellSeconds, report.AvgRSSI = deviceStats(snap.Devices)
	report.HourlyBreakdown = hourlyBreakdown(snap.HourlyCounts)
	report.Engagement = classifyEngagement(snap.ConnectionRate)
	report.Recommendations = b.engine.Generate(report)

	return report
}

func classifyEngagement(rate float64) domain.EngagementTier {
	switch {
	case rate >= domain.HighEngagementThreshold:
		return domain.EngagementHigh
	case rate >= domain.ModerateEngagementThreshold:
		return domain.EngagementModerate
	default:
		return domain.EngagementLow
	}
}

// presenceStats returns the average and peak concurrent device counts
// across the session history.
func presenceStats(history []domain.StatsSample) (avg float64, peak int) {
	if len(history) == 0 {
		return 0, 0
	}
	sum := 0
	for _, s := range history {
		total := s.TotalDevices()
		sum += total
		if total > peak {
			peak = total
		}
	}
	return float64(sum) / float64(len(history)), peak
}

// peakHour returns the busiest hour bucket. Ties resolve to the earliest
// hour so repeated builds over the same snapshot agree.
func peakHour(hourly map[string]int) (hour string, count int) {
	keys := make([]string, 0, len(hourly))
	for k := range hourly {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if hourly[k] > count {
			hour, count = k, hourly[k]
		}
	}
	return hour, count
}

func deviceStats(devices map[string]domain.DeviceRecord) (avgDwell, maxDwell, avgRSSI float64) {
	if len(devices) == 0 {
		return 0, 0, 0
	}

	var dwellSum, rssiSum float64
	rssiCount := 0
	for _, rec := range devices {
		dwellSum += rec.DwellSeconds
		if rec.DwellSeconds > maxDwell {
			maxDwell = rec.DwellSeconds
		}
		if len(rec.SignalHistory) > 0 {
			rssiSum += rec.AverageRSSI()
			rssiCount++
		}
	}

	avgDwell = dwellSum / float64(len(devices))
	if rssiCount > 0 {
		avgRSSI = rssiSum / float64(rssiCount)
	}
	return avgDwell, maxDwell, avgRSSI
}

func hourlyBreakdown(hourly map[string]int) []domain.HourCount {
	keys := make([]string, 0, len(hourly))
	for k := range hourly {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.HourCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.HourCount{Hour: k, Count: hourly[k]})
	}
	return out
}
