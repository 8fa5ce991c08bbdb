// Package registry owns the per-device state of a monitoring session.
package registry

import (
	"time"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// HourKeyFormat truncates a timestamp to the hourly bucket key.
const HourKeyFormat = "2006-01-02 15:00"

// DeviceRegistry maps normalized MAC addresses to device records and
// maintains the hourly detection histogram. It carries no lock of its
// own: all access is serialized by the session store that owns it, so a
// snapshot can never observe a bucket incremented without the matching
// signal sample appended.
type DeviceRegistry struct {
	devices map[string]*domain.DeviceRecord
	hourly  map[string]int
}

// New creates an empty registry.
func New() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*domain.DeviceRecord),
		hourly:  make(map[string]int),
	}
}

// Apply folds one device event into the registry. Records are created on
// first sight and only ever appended to afterwards; nothing removes a
// record during a session.
func (r *DeviceRegistry) Apply(ev domain.DeviceEvent, now time.Time) *domain.DeviceRecord {
	rec, ok := r.devices[ev.MAC]
	if !ok {
		rec = &domain.DeviceRecord{
			MAC:           ev.MAC,
			FirstSeen:     now,
			LastSeen:      now,
			SignalHistory: []int{ev.RSSI},
			Status:        ev.Status,
			Detections:    1,
		}
		if ev.Status == domain.StatusConnected {
			ct := now
			rec.ConnectTime = &ct
		}
		r.devices[ev.MAC] = rec
	} else {
		rec.SignalHistory = append(rec.SignalHistory, ev.RSSI)
		if ev.Status == domain.StatusConnected && rec.Status != domain.StatusConnected && rec.ConnectTime == nil {
			ct := now
			rec.ConnectTime = &ct
		}
		rec.Status = ev.Status
		rec.LastSeen = now
		rec.Detections++
	}
	rec.DwellSeconds = rec.LastSeen.Sub(rec.FirstSeen).Seconds()

	r.hourly[now.Format(HourKeyFormat)]++
	return rec
}

// Get returns the record for a MAC, or nil if never seen.
func (r *DeviceRegistry) Get(mac string) *domain.DeviceRecord {
	return r.devices[mac]
}

// Count returns the number of distinct devices ever seen this session.
func (r *DeviceRegistry) Count() int {
	return len(r.devices)
}

// SnapshotDevices returns a deep copy of all records.
func (r *DeviceRegistry) SnapshotDevices() map[string]domain.DeviceRecord {
	out := make(map[string]domain.DeviceRecord, len(r.devices))
	for mac, rec := range r.devices {
		out[mac] = rec.Clone()
	}
	return out
}

// SnapshotHourly returns a copy of the hourly detection histogram.
func (r *DeviceRegistry) SnapshotHourly() map[string]int {
	out := make(map[string]int, len(r.hourly))
	for k, v := range r.hourly {
		out[k] = v
	}
	return out
}
