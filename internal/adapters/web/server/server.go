// Package server exposes the dashboard and the JSON API over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pdfreporting "github.com/lcalzada-xor/crowdwatch/internal/adapters/reporting"
	"github.com/lcalzada-xor/crowdwatch/internal/adapters/web"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/reporting"
)

// StaleTTL is the age after which the live feed is flagged as stalled.
const StaleTTL = 30 * time.Second

// Server handles HTTP and WebSocket connections. All reads go through
// the snapshot provider; the server never touches live session state.
type Server struct {
	Addr       string
	Provider   ports.SnapshotProvider
	Builder    *reporting.ReportBuilder
	Forecaster ports.Forecaster
	PDF        *pdfreporting.PDFExporter
	WSManager  *web.WSManager

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, provider ports.SnapshotProvider, forecaster ports.Forecaster) *Server {
	return &Server{
		Addr:       addr,
		Provider:   provider,
		Builder:    reporting.NewReportBuilder(),
		Forecaster: forecaster,
		PDF:        pdfreporting.NewPDFExporter(),
		WSManager:  web.NewWSManager(provider, StaleTTL),
	}
}

// Run starts the server and the websocket broadcaster, then blocks
// until the context is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := otelhttp.NewHandler(s.routes(), "crowdwatch-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("web server shutdown", "error", err)
		}
	}()

	slog.Info("web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
