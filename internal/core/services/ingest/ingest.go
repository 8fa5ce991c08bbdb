// Package ingest runs the single producer loop that feeds the session
// store from a line source.
package ingest

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
	"github.com/lcalzada-xor/crowdwatch/internal/parser"
	"github.com/lcalzada-xor/crowdwatch/internal/telemetry"
)

// Applier is the store surface the ingestor writes to.
type Applier interface {
	ApplyDeviceEvent(ev domain.DeviceEvent)
	ApplyStatsEvent(ev domain.StatsEvent) error
}

// Ingestor reads lines from a source, parses them and applies the
// resulting events to the store. It is the only writer in the system.
type Ingestor struct {
	source     ports.LineSource
	store      Applier
	diag       ports.DiagnosticSink
	sourceName string
}

// New creates an ingestor. diag may be nil, in which case unrecognized
// lines are logged at debug level.
func New(source ports.LineSource, store Applier, diag ports.DiagnosticSink, sourceName string) *Ingestor {
	return &Ingestor{
		source:     source,
		store:      store,
		diag:       diag,
		sourceName: sourceName,
	}
}

// Run consumes the source until it is exhausted or the context is
// cancelled. A source failure ends ingestion only; consumers keep
// serving the last aggregated state.
func (in *Ingestor) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- in.source.Start(ctx)
	}()

	for line := range in.source.Lines() {
		telemetry.LinesRead.WithLabelValues(in.sourceName).Inc()
		in.handle(line)
	}

	return <-errCh
}

func (in *Ingestor) handle(line string) {
	res := parser.Parse(line)
	switch res.Kind {
	case parser.KindDevice:
		in.store.ApplyDeviceEvent(res.Device)
	case parser.KindStats:
		if err := in.store.ApplyStatsEvent(res.Stats); err != nil {
			slog.Error("apply stats event", "error", err)
		}
	default:
		telemetry.UnrecognizedLines.Inc()
		if in.diag != nil {
			in.diag.Unrecognized(res.Line)
		} else {
			slog.Debug("unrecognized line", "line", res.Line)
		}
	}
}

// LogSink is a DiagnosticSink that reports unrecognized lines through
// the structured logger.
type LogSink struct{}

func (LogSink) Unrecognized(line string) {
	slog.Warn("unrecognized line", "line", line)
}
