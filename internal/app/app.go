// Package app wires configuration, transports, services and servers
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/crowdwatch/internal/adapters/linesource"
	"github.com/lcalzada-xor/crowdwatch/internal/adapters/sessionlog"
	webserver "github.com/lcalzada-xor/crowdwatch/internal/adapters/web/server"
	"github.com/lcalzada-xor/crowdwatch/internal/config"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/forecast"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/ingest"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/registry"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/reporting"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/session"
	"github.com/lcalzada-xor/crowdwatch/internal/mock"
	"github.com/lcalzada-xor/crowdwatch/internal/telemetry"
)

// mockFeedInterval paces the simulated firmware in mock mode.
const mockFeedInterval = 2 * time.Second

// Application holds the core components of the application. It acts as
// the facade for the whole system, orchestrating services and
// infrastructure.
type Application struct {
	Config    *config.Config
	Store     *session.Store
	WebServer *webserver.Server
	Ingestor  *ingest.Ingestor

	sessionLog *sessionlog.CSVLog
	source     ports.LineSource
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	if err := os.MkdirAll(app.Config.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logPath := filepath.Join(app.Config.DataDir,
		fmt.Sprintf("crowd_analytics_%s.csv", time.Now().Format("20060102_150405")))
	csvLog, err := sessionlog.NewCSVLog(logPath)
	if err != nil {
		return err
	}
	app.sessionLog = csvLog
	slog.Info("session log opened", "path", logPath)

	app.Store = session.NewStore(
		registry.New(),
		session.NewAggregateCounters(app.Config.WindowSize),
		csvLog,
	)

	sourceName := "serial"
	if app.Config.MockMode {
		slog.Info("mock mode active, using simulated feed")
		app.source = mock.NewFeed(mockFeedInterval)
		sourceName = "mock"
	} else {
		app.source = linesource.NewSerialSource(app.Config.SerialPort, app.Config.BaudRate)
	}

	app.Ingestor = ingest.New(app.source, app.Store, ingest.LogSink{}, sourceName)
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Store, forecast.NewLinearForecaster())

	return nil
}

// Run starts the ingest loop and the web server, then blocks until the
// context is cancelled or the web server fails. A feed failure is not
// fatal: the dashboard and reports keep serving the aggregated state.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("starting crowdwatch", "session_id", app.Store.SessionID())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	ingestDone := make(chan struct{})

	go func() {
		defer close(ingestDone)
		if err := app.Ingestor.Run(runCtx); err != nil && runCtx.Err() == nil {
			slog.Error("ingest stopped, consumers keep serving last state", "error", err)
		}
	}()

	go func() {
		if err := app.WebServer.Run(runCtx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("crowdwatch ready", "addr", app.Config.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("termination signal received")
	case err := <-errChan:
		runErr = err
	}

	// Stop the feed and wait for the last buffered lines to be applied
	// before the session log is closed. The source closes its channel on
	// cancel, so the drain is finite.
	cancel()
	<-ingestDone

	if err := app.cleanup(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// cleanup closes the session log and writes the final session report.
func (app *Application) cleanup() error {
	snap := app.Store.Snapshot()

	if err := app.sessionLog.Close(); err != nil {
		slog.Error("close session log", "error", err)
	}

	report := reporting.NewReportBuilder().Build(snap)
	reportPath := filepath.Join(app.Config.DataDir,
		fmt.Sprintf("session_report_%s.txt", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(reportPath, []byte(reporting.RenderText(report)), 0644); err != nil {
		return fmt.Errorf("write session report: %w", err)
	}

	slog.Info("session finished",
		"report", reportPath,
		"unique_devices", report.UniqueDevices,
		"connection_rate", report.ConnectionRate,
	)
	return nil
}
