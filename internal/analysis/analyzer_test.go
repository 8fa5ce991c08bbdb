package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/crowdwatch/internal/adapters/sessionlog"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/forecast"
)

func makeRows(n int, totalAt func(i int) int) []sessionlog.Row {
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	rows := make([]sessionlog.Row, n)
	for i := range rows {
		total := totalAt(i)
		rows[i] = sessionlog.Row{
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			Connected:      total / 2,
			Nearby:         total - total/2,
			ConnectionRate: 25.0,
		}
	}
	return rows
}

func TestAnalyzer_Basics(t *testing.T) {
	a := New(forecast.NewLinearForecaster())

	rows := makeRows(30, func(i int) int { return 10 })
	res, err := a.Analyze(rows)
	require.NoError(t, err)

	assert.Equal(t, 30, res.Rows)
	assert.InDelta(t, 10.0, res.AvgDevices, 1e-9)
	assert.Equal(t, 10, res.PeakDevices)
	assert.Equal(t, 25.0, res.FinalRate)
	assert.InDelta(t, 0.5, res.EngagementRatio, 1e-9)
	assert.InDelta(t, 0.0, res.TrendPerHour, 1e-9)

	require.NoError(t, res.ForecastError)
	require.Len(t, res.Forecast, ForecastHorizon)
	// Flat history projects flat, no deviation alerts.
	assert.Empty(t, res.Alerts)
}

func TestAnalyzer_RisingTrendRaisesAlert(t *testing.T) {
	a := New(forecast.NewLinearForecaster())

	rows := makeRows(40, func(i int) int { return 10 + i })
	res, err := a.Analyze(rows)
	require.NoError(t, err)

	assert.Greater(t, res.TrendPerHour, 0.0)
	// One device per one-minute sample fits to 60 devices/hour.
	assert.InDelta(t, 60.0, res.TrendPerHour, 1e-6)
	require.NoError(t, res.ForecastError)
	// 60 projected samples of +1/sample from 49 devices passes +20% fast.
	require.NotEmpty(t, res.Alerts)
	assert.Contains(t, res.Alerts[0], "rise")
}

func TestAnalyzer_HourOfDayProfile(t *testing.T) {
	a := New(forecast.NewLinearForecaster())

	// 09:00 has 60 one-minute samples of 5 devices, 10:00 has 60 of 20.
	rows := makeRows(120, func(i int) int {
		if i < 60 {
			return 5
		}
		return 20
	})
	res, err := a.Analyze(rows)
	require.NoError(t, err)

	require.Len(t, res.HourOfDay, 2)
	assert.Equal(t, 10, res.BusiestHour)
	assert.Equal(t, 9, res.QuietestHour)
	assert.InDelta(t, 5.0, res.HourOfDay[0].Average, 1e-9)
	assert.InDelta(t, 20.0, res.HourOfDay[1].Average, 1e-9)
}

func TestAnalyzer_ShortLogSkipsForecast(t *testing.T) {
	a := New(forecast.NewLinearForecaster())

	rows := makeRows(5, func(i int) int { return 3 })
	res, err := a.Analyze(rows)
	require.NoError(t, err)

	assert.ErrorIs(t, res.ForecastError, forecast.ErrInsufficientData)
	assert.Empty(t, res.Forecast)

	// The report still renders without a forecast.
	text := RenderText(res)
	assert.Contains(t, text, "Not available")
}

func TestAnalyzer_EmptyLog(t *testing.T) {
	a := New(forecast.NewLinearForecaster())
	_, err := a.Analyze(nil)
	assert.Error(t, err)
}

func TestRenderText_Sections(t *testing.T) {
	a := New(forecast.NewLinearForecaster())
	rows := makeRows(30, func(i int) int { return 10 })
	res, err := a.Analyze(rows)
	require.NoError(t, err)

	text := RenderText(res)
	assert.Contains(t, text, "CROWDWATCH OFFLINE ANALYSIS")
	assert.Contains(t, text, "HOUR-OF-DAY PROFILE")
	assert.Contains(t, text, "FORECAST")
	assert.Contains(t, text, "Busiest hour")
}
