package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LinesRead counts raw lines received from the transport
	LinesRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdwatch",
			Name:      "lines_read_total",
			Help:      "Total number of raw lines read from the line source",
		},
		[]string{"source"},
	)

	// EventsApplied counts parsed events applied to the session store
	EventsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdwatch",
			Name:      "events_applied_total",
			Help:      "Total number of events applied to the session store",
		},
		[]string{"type"},
	)

	// UnrecognizedLines counts lines that matched neither message shape
	UnrecognizedLines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowdwatch",
			Name:      "unrecognized_lines_total",
			Help:      "Total number of lines routed to the diagnostic sink",
		},
	)

	// LogWriteErrors counts failed session log appends
	LogWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowdwatch",
			Name:      "session_log_write_errors_total",
			Help:      "Total number of failed session log writes",
		},
	)

	// DevicesTracked reports the number of unique devices seen this session
	DevicesTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crowdwatch",
			Name:      "devices_tracked",
			Help:      "Number of unique devices tracked in the current session",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(LinesRead)
		prometheus.DefaultRegisterer.Register(EventsApplied)
		prometheus.DefaultRegisterer.Register(UnrecognizedLines)
		prometheus.DefaultRegisterer.Register(LogWriteErrors)
		prometheus.DefaultRegisterer.Register(DevicesTracked)
	})
}
