// Package session holds the aggregation state of one monitoring session
// and the store that guards it.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/registry"
	"github.com/lcalzada-xor/crowdwatch/internal/telemetry"
)

// Store is the single synchronization point of the engine. The ingest
// producer is the only writer; dashboard, report and log consumers read
// through Snapshot at their own cadence. Every mutation and every read
// serializes through one mutex, so a snapshot always reflects a prefix of
// the applied-event sequence, never a torn update.
type Store struct {
	mu sync.Mutex

	sessionID string
	start     time.Time
	registry  *registry.DeviceRegistry
	counters  *AggregateCounters
	log       ports.SessionLog // optional; nil disables mirroring

	lastUpdated time.Time

	now func() time.Time
}

// NewStore creates a session store. log may be nil when no durable
// mirroring is wanted (offline analysis, tests).
func NewStore(reg *registry.DeviceRegistry, counters *AggregateCounters, log ports.SessionLog) *Store {
	now := time.Now()
	return &Store{
		sessionID:   uuid.New().String(),
		start:       now,
		registry:    reg,
		counters:    counters,
		log:         log,
		lastUpdated: now,
		now:         time.Now,
	}
}

// SessionID returns the unique id assigned to this session.
func (s *Store) SessionID() string {
	return s.sessionID
}

// ApplyDeviceEvent folds a device event into the registry. The hourly
// bucket increment and the signal-history append happen inside the same
// critical section, so no reader can observe one without the other.
func (s *Store) ApplyDeviceEvent(ev domain.DeviceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.registry.Apply(ev, now)
	s.lastUpdated = now

	telemetry.EventsApplied.WithLabelValues("device").Inc()
	telemetry.DevicesTracked.Set(float64(s.registry.Count()))

	if rec.Detections == 1 {
		slog.Info("new device", "mac", rec.MAC, "rssi", ev.RSSI, "status", string(ev.Status))
	}
}

// ApplyStatsEvent folds a stats event into the counters and mirrors the
// resulting row into the session log before the critical section ends.
// The row is written synchronously: at shutdown a pending row is either
// fully on disk or was never started.
func (s *Store) ApplyStatsEvent(ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sample := s.counters.Apply(ev, now)
	s.lastUpdated = now

	telemetry.EventsApplied.WithLabelValues("stats").Inc()

	if s.log == nil {
		return nil
	}
	rate := s.counters.ConnectionRate()
	if err := s.log.Append(sample, rate, s.registry.Count()); err != nil {
		telemetry.LogWriteErrors.Inc()
		return fmt.Errorf("session log append: %w", err)
	}
	return nil
}

// Snapshot returns a deep, read-only copy of the whole session state.
func (s *Store) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	probes, connections := s.counters.Totals()
	return domain.SessionSnapshot{
		SessionID:        s.sessionID,
		SessionStart:     s.start,
		LastUpdated:      s.lastUpdated,
		Devices:          s.registry.SnapshotDevices(),
		HourlyCounts:     s.registry.SnapshotHourly(),
		TotalProbes:      probes,
		TotalConnections: connections,
		ConnectionRate:   s.counters.ConnectionRate(),
		Window:           s.counters.SnapshotWindow(),
		History:          s.counters.SnapshotHistory(),
	}
}
