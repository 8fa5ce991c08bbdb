// Package analysis runs offline trend analysis over recorded session
// logs.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lcalzada-xor/crowdwatch/internal/adapters/sessionlog"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/forecast"
)

const (
	// ForecastHorizon is the number of future samples projected.
	ForecastHorizon = 60

	// AlertDeviation flags forecast points that drift more than this
	// fraction from the last observed value.
	AlertDeviation = 0.20
)

// HourOfDayAverage is the mean device count for one hour of the day
// across the whole log.
type HourOfDayAverage struct {
	Hour    int     `json:"hour"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// Result holds every metric derived from a session log.
type Result struct {
	Rows            int
	From, To        string
	AvgDevices      float64
	PeakDevices     int
	FinalRate       float64
	EngagementRatio float64
	TrendPerHour    float64
	HourOfDay       []HourOfDayAverage
	BusiestHour     int
	QuietestHour    int
	Forecast        []float64
	ForecastBase    float64
	Alerts          []string
	ForecastError   error
}

// Analyzer computes offline analytics from recorded rows.
type Analyzer struct {
	forecaster *forecast.LinearForecaster
}

// New creates an analyzer using the given forecaster.
func New(forecaster *forecast.LinearForecaster) *Analyzer {
	return &Analyzer{forecaster: forecaster}
}

// Analyze derives trends, hour-of-day profiles and a forecast from the
// log rows. Rows must be in recorded order.
func (a *Analyzer) Analyze(rows []sessionlog.Row) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("analysis: no rows to analyze")
	}

	res := &Result{
		Rows: len(rows),
		From: rows[0].Timestamp.Format("2006-01-02 15:04:05"),
		To:   rows[len(rows)-1].Timestamp.Format("2006-01-02 15:04:05"),
	}

	series := make([]float64, len(rows))
	sum, connectedSum := 0, 0
	for i, row := range rows {
		total := row.TotalDevices()
		series[i] = float64(total)
		sum += total
		connectedSum += row.Connected
		if total > res.PeakDevices {
			res.PeakDevices = total
		}
	}
	res.AvgDevices = float64(sum) / float64(len(rows))
	if sum > 0 {
		res.EngagementRatio = float64(connectedSum) / float64(sum)
	}
	res.FinalRate = rows[len(rows)-1].ConnectionRate

	res.HourOfDay, res.BusiestHour, res.QuietestHour = hourOfDayProfile(rows)
	res.TrendPerHour = a.trendPerHour(rows, series)

	res.ForecastBase = series[len(series)-1]
	preds, err := a.forecaster.FitPredict(series, ForecastHorizon)
	if err != nil {
		res.ForecastError = err
	} else {
		res.Forecast = preds
		res.Alerts = deviationAlerts(preds, res.ForecastBase)
	}

	return res, nil
}

func hourOfDayProfile(rows []sessionlog.Row) (profile []HourOfDayAverage, busiest, quietest int) {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, row := range rows {
		h := row.Timestamp.Hour()
		sums[h] += row.TotalDevices()
		counts[h]++
	}

	hours := make([]int, 0, len(sums))
	for h := range sums {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	busiest, quietest = hours[0], hours[0]
	var bestAvg, worstAvg float64
	for i, h := range hours {
		avg := float64(sums[h]) / float64(counts[h])
		profile = append(profile, HourOfDayAverage{Hour: h, Average: avg, Samples: counts[h]})
		if i == 0 || avg > bestAvg {
			bestAvg, busiest = avg, h
		}
		if i == 0 || avg < worstAvg {
			worstAvg, quietest = avg, h
		}
	}
	return profile, busiest, quietest
}

// trendPerHour converts the fitted per-sample slope into device-count
// change per hour. Logs too short for a fit fall back to a first-to-last
// estimate.
func (a *Analyzer) trendPerHour(rows []sessionlog.Row, series []float64) float64 {
	first, last := rows[0], rows[len(rows)-1]
	hours := last.Timestamp.Sub(first.Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	if slope, err := a.forecaster.Slope(series); err == nil {
		return slope * float64(len(rows)-1) / hours
	}
	return float64(last.TotalDevices()-first.TotalDevices()) / hours
}

func deviationAlerts(preds []float64, base float64) []string {
	if base == 0 {
		return nil
	}
	var alerts []string
	for i, p := range preds {
		dev := (p - base) / base
		if math.Abs(dev) > AlertDeviation {
			direction := "rise"
			if dev < 0 {
				direction = "drop"
			}
			alerts = append(alerts,
				fmt.Sprintf("projected %s of %.0f%% at sample +%d (%.1f devices)",
					direction, math.Abs(dev)*100, i+1, p))
			break
		}
	}
	return alerts
}

// RenderText formats the analysis as a plain-text business report.
func RenderText(res *Result) string {
	var b strings.Builder
	banner := strings.Repeat("=", 60)

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "CROWDWATCH OFFLINE ANALYSIS")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Samples:          %d\n", res.Rows)
	fmt.Fprintf(&b, "Period:           %s to %s\n", res.From, res.To)
	fmt.Fprintf(&b, "Avg devices:      %.1f\n", res.AvgDevices)
	fmt.Fprintf(&b, "Peak devices:     %d\n", res.PeakDevices)
	fmt.Fprintf(&b, "Final conn rate:  %.1f%%\n", res.FinalRate)
	fmt.Fprintf(&b, "Engagement:       %.0f%% of presence connected\n", res.EngagementRatio*100)
	fmt.Fprintf(&b, "Trend:            %+.1f devices/hour\n", res.TrendPerHour)

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "HOUR-OF-DAY PROFILE")
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	for _, row := range res.HourOfDay {
		fmt.Fprintf(&b, "%02d:00  avg %5.1f devices  (%d samples)\n", row.Hour, row.Average, row.Samples)
	}
	fmt.Fprintf(&b, "Busiest hour:  %02d:00\n", res.BusiestHour)
	fmt.Fprintf(&b, "Quietest hour: %02d:00\n", res.QuietestHour)

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "FORECAST")
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	if res.ForecastError != nil {
		fmt.Fprintf(&b, "Not available: %v\n", res.ForecastError)
	} else {
		last := res.Forecast[len(res.Forecast)-1]
		fmt.Fprintf(&b, "Projected devices after %d samples: %.1f (now %.1f)\n",
			ForecastHorizon, last, res.ForecastBase)
		if len(res.Alerts) == 0 {
			fmt.Fprintln(&b, "No significant deviation projected.")
		}
		for _, alert := range res.Alerts {
			fmt.Fprintf(&b, "ALERT: %s\n", alert)
		}
	}

	fmt.Fprintln(&b, banner)
	return b.String()
}
