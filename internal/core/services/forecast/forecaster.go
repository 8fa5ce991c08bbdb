// Package forecast extrapolates short-term trends from session history.
package forecast

import "errors"

// MinSamples is the minimum number of history points required before a
// trend fit is attempted.
const MinSamples = 20

// ErrInsufficientData is returned when the series is too short to fit.
var ErrInsufficientData = errors.New("forecast: insufficient data points")

// LinearForecaster fits an ordinary least-squares line over the sample
// index and extrapolates it forward. Cheap and good enough for the
// "where is this trending" question a dashboard asks.
type LinearForecaster struct{}

// NewLinearForecaster creates a linear trend forecaster.
func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

// FitPredict fits y = slope*x + intercept over series (x is the sample
// index) and returns horizon extrapolated values starting at len(series).
func (f *LinearForecaster) FitPredict(series []float64, horizon int) ([]float64, error) {
	if len(series) < MinSamples {
		return nil, ErrInsufficientData
	}
	if horizon <= 0 {
		return nil, nil
	}

	slope, intercept := fitLine(series)

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		x := float64(len(series) + i)
		out[i] = slope*x + intercept
	}
	return out, nil
}

// Slope returns only the fitted slope, used for trend direction checks.
func (f *LinearForecaster) Slope(series []float64) (float64, error) {
	if len(series) < MinSamples {
		return 0, ErrInsufficientData
	}
	slope, _ := fitLine(series)
	return slope, nil
}

func fitLine(series []float64) (slope, intercept float64) {
	n := float64(len(series))

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
