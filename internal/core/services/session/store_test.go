package session

import (
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/registry"
	"github.com/lcalzada-xor/crowdwatch/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingLog records appended rows for assertions.
type capturingLog struct {
	mu   sync.Mutex
	rows []domain.StatsSample
}

func (l *capturingLog) Append(sample domain.StatsSample, rate float64, unique int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, sample)
	return nil
}

func (l *capturingLog) Close() error { return nil }

func newTestStore(log ports.SessionLog) *Store {
	return NewStore(registry.New(), NewAggregateCounters(DefaultWindowSize), log)
}

func apply(t *testing.T, s *Store, line string) {
	t.Helper()
	res := parser.Parse(line)
	switch res.Kind {
	case parser.KindDevice:
		s.ApplyDeviceEvent(res.Device)
	case parser.KindStats:
		require.NoError(t, s.ApplyStatsEvent(res.Stats))
	default:
		t.Fatalf("line did not parse: %q", line)
	}
}

func TestStore_DeviceScenario(t *testing.T) {
	s := newTestStore(nil)

	apply(t, s, "[DEVICE] MAC:AA:BB:CC:DD:EE:01 | RSSI:-40 | STATUS:NEARBY")
	apply(t, s, "[DEVICE] MAC:AA:BB:CC:DD:EE:01 | RSSI:-38 | STATUS:CONNECTED")

	snap := s.Snapshot()
	require.Equal(t, 1, snap.UniqueDevices())

	rec := snap.Devices["AA:BB:CC:DD:EE:01"]
	assert.Equal(t, domain.StatusConnected, rec.Status)
	assert.Equal(t, []int{-40, -38}, rec.SignalHistory)
	assert.NotNil(t, rec.ConnectTime)
}

func TestStore_StatsScenario(t *testing.T) {
	s := newTestStore(nil)

	apply(t, s, "[STATS] CONNECTED:3 | NEARBY:7 | TOTAL_PROBES:50 | TOTAL_CONNECTS:10")

	snap := s.Snapshot()
	assert.Equal(t, 20.0, snap.ConnectionRate)
	assert.Equal(t, 50, snap.TotalProbes)
	assert.Equal(t, 10, snap.TotalConnections)
	require.Len(t, snap.History, 1)
	assert.Equal(t, 10, snap.History[0].TotalDevices())
}

func TestStore_GarbageLineChangesNothing(t *testing.T) {
	s := newTestStore(nil)
	before := s.Snapshot()

	res := parser.Parse("garbage input")
	assert.Equal(t, parser.KindUnrecognized, res.Kind)
	// Nothing applied; the store is untouched.

	after := s.Snapshot()
	assert.Equal(t, before.UniqueDevices(), after.UniqueDevices())
	assert.Equal(t, before.TotalProbes, after.TotalProbes)
	assert.Len(t, after.History, 0)
}

func TestStore_MirrorsStatsIntoSessionLog(t *testing.T) {
	log := &capturingLog{}
	s := newTestStore(log)

	apply(t, s, "[STATS] CONNECTED:1 | NEARBY:2 | TOTAL_PROBES:10 | TOTAL_CONNECTS:5")
	apply(t, s, "[STATS] CONNECTED:2 | NEARBY:2 | TOTAL_PROBES:12 | TOTAL_CONNECTS:6")

	require.Len(t, log.rows, 2)
	assert.Equal(t, 10, log.rows[0].TotalProbes)
	assert.Equal(t, 12, log.rows[1].TotalProbes)
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(nil)
	apply(t, s, "[DEVICE] MAC:AA:BB:CC:DD:EE:01 | RSSI:-40 | STATUS:NEARBY")
	apply(t, s, "[STATS] CONNECTED:1 | NEARBY:0 | TOTAL_PROBES:1 | TOTAL_CONNECTS:1")

	snap := s.Snapshot()
	snap.Devices["AA:BB:CC:DD:EE:01"].SignalHistory[0] = 0
	snap.HourlyCounts["poisoned"] = 99
	snap.History[0].Connected = 42

	fresh := s.Snapshot()
	assert.Equal(t, -40, fresh.Devices["AA:BB:CC:DD:EE:01"].SignalHistory[0])
	assert.NotContains(t, fresh.HourlyCounts, "poisoned")
	assert.Equal(t, 1, fresh.History[0].Connected)
}

func TestStore_ConcurrentProducerAndConsumers(t *testing.T) {
	s := newTestStore(&capturingLog{})
	done := make(chan struct{})

	// Single producer, as in the live system.
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			s.ApplyDeviceEvent(domain.DeviceEvent{
				MAC:    "AA:BB:CC:DD:EE:0" + string(rune('0'+i%8)),
				RSSI:   -40 - i%30,
				Status: domain.StatusNearby,
			})
			if i%10 == 0 {
				_ = s.ApplyStatsEvent(domain.StatsEvent{
					Connected:        i % 5,
					Nearby:           i % 7,
					TotalProbes:      i,
					TotalConnections: i / 2,
				})
			}
		}
	}()

	// Concurrent snapshot readers must always observe consistent state.
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				snap := s.Snapshot()
				for _, rec := range snap.Devices {
					assert.False(t, rec.FirstSeen.After(rec.LastSeen))
					assert.NotEmpty(t, rec.SignalHistory)
					assert.Equal(t, rec.LastSeen.Sub(rec.FirstSeen).Seconds(), rec.DwellSeconds)
				}
				assert.GreaterOrEqual(t, snap.ConnectionRate, 0.0)
				assert.LessOrEqual(t, snap.ConnectionRate, 100.0)
				assert.LessOrEqual(t, len(snap.Window), DefaultWindowSize)
			}
		}()
	}

	<-done
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 8, snap.UniqueDevices(), "distinct normalized ids ever seen")
}

func TestStore_LastUpdatedAdvances(t *testing.T) {
	s := newTestStore(nil)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s.ApplyDeviceEvent(domain.DeviceEvent{MAC: "AA:BB:CC:DD:EE:01", RSSI: -40, Status: domain.StatusNearby})
	first := s.Snapshot().LastUpdated

	s.ApplyDeviceEvent(domain.DeviceEvent{MAC: "AA:BB:CC:DD:EE:01", RSSI: -41, Status: domain.StatusNearby})
	second := s.Snapshot().LastUpdated

	assert.True(t, second.After(first))
}
