package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

func sampleSnapshot() domain.SessionSnapshot {
	start := time.Now().Add(-2 * time.Hour)
	connect := start.Add(time.Minute)
	return domain.SessionSnapshot{
		SessionID:    "test-session",
		SessionStart: start,
		LastUpdated:  time.Now(),
		Devices: map[string]domain.DeviceRecord{
			"AA:BB:CC:DD:EE:01": {
				MAC:           "AA:BB:CC:DD:EE:01",
				FirstSeen:     start,
				LastSeen:      start.Add(10 * time.Minute),
				SignalHistory: []int{-40, -42},
				Status:        domain.StatusConnected,
				ConnectTime:   &connect,
				Detections:    2,
				DwellSeconds:  600,
			},
			"AA:BB:CC:DD:EE:02": {
				MAC:           "AA:BB:CC:DD:EE:02",
				FirstSeen:     start,
				LastSeen:      start.Add(2 * time.Minute),
				SignalHistory: []int{-70},
				Status:        domain.StatusNearby,
				Detections:    1,
				DwellSeconds:  120,
			},
		},
		HourlyCounts: map[string]int{
			"2026-08-24 10:00": 5,
			"2026-08-24 11:00": 9,
			"2026-08-24 12:00": 9,
		},
		TotalProbes:      100,
		TotalConnections: 50,
		ConnectionRate:   50.0,
		History: []domain.StatsSample{
			{Connected: 1, Nearby: 3},
			{Connected: 2, Nearby: 6},
			{Connected: 1, Nearby: 1},
		},
	}
}

func TestReportBuilder_Build(t *testing.T) {
	report := NewReportBuilder().Build(sampleSnapshot())

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 2, report.UniqueDevices)
	assert.Equal(t, 100, report.TotalProbes)
	assert.Equal(t, 50, report.TotalConnections)
	assert.InDelta(t, 2.0, report.DurationHours, 0.1)

	assert.InDelta(t, (4+8+2)/3.0, report.AvgDevices, 1e-9)
	assert.Equal(t, 8, report.PeakConcurrent)

	assert.InDelta(t, 360.0, report.AvgDwellSeconds, 1e-9)
	assert.InDelta(t, 600.0, report.MaxDwellSeconds, 1e-9)
	assert.InDelta(t, (-41.0+-70.0)/2, report.AvgRSSI, 1e-9)

	assert.Equal(t, domain.EngagementModerate, report.Engagement)
	assert.NotEmpty(t, report.Recommendations)
}

func TestReportBuilder_PeakHourTieResolvesToEarliest(t *testing.T) {
	report := NewReportBuilder().Build(sampleSnapshot())

	assert.Equal(t, "2026-08-24 11:00", report.PeakHour)
	assert.Equal(t, 9, report.PeakHourCount)
}

func TestReportBuilder_HourlyBreakdownAscending(t *testing.T) {
	report := NewReportBuilder().Build(sampleSnapshot())

	require.Len(t, report.HourlyBreakdown, 3)
	assert.Equal(t, "2026-08-24 10:00", report.HourlyBreakdown[0].Hour)
	assert.Equal(t, "2026-08-24 12:00", report.HourlyBreakdown[2].Hour)
}

func TestReportBuilder_EmptySnapshot(t *testing.T) {
	report := NewReportBuilder().Build(domain.SessionSnapshot{SessionStart: time.Now()})

	assert.Equal(t, 0, report.UniqueDevices)
	assert.Equal(t, 0.0, report.AvgDevices)
	assert.Equal(t, 0, report.PeakConcurrent)
	assert.Equal(t, "", report.PeakHour)
	assert.Equal(t, 0.0, report.AvgDwellSeconds)
	assert.Equal(t, domain.EngagementLow, report.Engagement)
}

func TestClassifyEngagement(t *testing.T) {
	tests := []struct {
		rate float64
		want domain.EngagementTier
	}{
		{85.0, domain.EngagementHigh},
		{70.0, domain.EngagementHigh},
		{55.0, domain.EngagementModerate},
		{40.0, domain.EngagementModerate},
		{12.0, domain.EngagementLow},
		{0.0, domain.EngagementLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyEngagement(tt.rate), "rate %.1f", tt.rate)
	}
}
