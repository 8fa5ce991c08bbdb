package ports

import (
	"context"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// LineSource produces raw text lines from a transport (serial port, pipe,
// mock generator). Start blocks until the context is cancelled or the
// transport fails; produced lines are delivered on Lines. Implementations
// must close the Lines channel when Start returns.
type LineSource interface {
	Start(ctx context.Context) error
	Lines() <-chan string
}

// SessionLog is the durable append-only record of stats samples. Append is
// called synchronously from the aggregation critical section, so a row is
// either fully written or not written at all.
type SessionLog interface {
	Append(sample domain.StatsSample, connectionRate float64, uniqueDevices int) error
	Close() error
}

// DiagnosticSink receives lines that matched neither message shape. Lines
// are surfaced verbatim, never silently dropped.
type DiagnosticSink interface {
	Unrecognized(line string)
}

// SnapshotProvider exposes a consistent read-only copy of the session
// state to concurrent consumers.
type SnapshotProvider interface {
	Snapshot() domain.SessionSnapshot
}

// Forecaster fits a trend over an index-vs-value series and extrapolates
// horizon future points.
type Forecaster interface {
	FitPredict(series []float64, horizon int) ([]float64, error)
}
