package reporting

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

const bannerWidth = 60

// RenderText formats a report as the plain-text summary written at
// session end and printed by the offline analyzer.
func RenderText(report domain.SessionReport) string {
	var b strings.Builder
	banner := strings.Repeat("=", bannerWidth)

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "CROWDWATCH SESSION REPORT")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Report ID:        %s\n", report.ID)
	fmt.Fprintf(&b, "Generated:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Session start:    %s\n", report.SessionStart.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration:         %.1f hours\n", report.DurationHours)

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "SESSION SUMMARY")
	fmt.Fprintln(&b, strings.Repeat("-", bannerWidth))
	fmt.Fprintf(&b, "Unique devices:   %d\n", report.UniqueDevices)
	fmt.Fprintf(&b, "Total probes:     %d\n", report.TotalProbes)
	fmt.Fprintf(&b, "Total connects:   %d\n", report.TotalConnections)
	fmt.Fprintf(&b, "Connection rate:  %.1f%%\n", report.ConnectionRate)
	fmt.Fprintf(&b, "Avg devices:      %.1f\n", report.AvgDevices)
	fmt.Fprintf(&b, "Peak concurrent:  %d\n", report.PeakConcurrent)
	if report.PeakHour != "" {
		fmt.Fprintf(&b, "Peak hour:        %s (%d detections)\n", report.PeakHour, report.PeakHourCount)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "DEVICE STATISTICS")
	fmt.Fprintln(&b, strings.Repeat("-", bannerWidth))
	fmt.Fprintf(&b, "Avg dwell:        %.0f seconds\n", report.AvgDwellSeconds)
	fmt.Fprintf(&b, "Max dwell:        %.0f seconds\n", report.MaxDwellSeconds)
	fmt.Fprintf(&b, "Avg RSSI:         %.1f dBm\n", report.AvgRSSI)
	fmt.Fprintf(&b, "Engagement:       %s\n", report.Engagement)

	if len(report.HourlyBreakdown) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "HOURLY BREAKDOWN")
		fmt.Fprintln(&b, strings.Repeat("-", bannerWidth))
		for _, row := range report.HourlyBreakdown {
			fmt.Fprintf(&b, "%s  %d detections\n", row.Hour, row.Count)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "RECOMMENDATIONS")
		fmt.Fprintln(&b, strings.Repeat("-", bannerWidth))
		for i, rec := range report.Recommendations {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, strings.ToUpper(rec.Priority), rec.Title)
			fmt.Fprintf(&b, "   %s\n", rec.Description)
			for _, action := range rec.Actions {
				fmt.Fprintf(&b, "   - %s\n", action)
			}
		}
	}

	fmt.Fprintln(&b, banner)
	return b.String()
}
