package domain

import "time"

// DeviceRecord tracks one unique device for the lifetime of a session.
// Records are never removed: a session tracks "ever seen", and "currently
// present" is derived downstream by filtering on LastSeen recency.
type DeviceRecord struct {
	MAC           string       `json:"mac"`
	FirstSeen     time.Time    `json:"first_seen"`
	LastSeen      time.Time    `json:"last_seen"`
	SignalHistory []int        `json:"signal_history"` // dBm samples, append-only
	Status        DeviceStatus `json:"status"`
	ConnectTime   *time.Time   `json:"connect_time,omitempty"` // first transition into CONNECTED
	Detections    int          `json:"detections"`
	DwellSeconds  float64      `json:"dwell_seconds"` // always LastSeen - FirstSeen
}

// Dwell returns how long the device has been tracked.
func (d *DeviceRecord) Dwell() time.Duration {
	return d.LastSeen.Sub(d.FirstSeen)
}

// AverageRSSI returns the mean of the signal history, or 0 if empty.
func (d *DeviceRecord) AverageRSSI() float64 {
	if len(d.SignalHistory) == 0 {
		return 0
	}
	sum := 0
	for _, rssi := range d.SignalHistory {
		sum += rssi
	}
	return float64(sum) / float64(len(d.SignalHistory))
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (d *DeviceRecord) Clone() DeviceRecord {
	out := *d
	out.SignalHistory = make([]int, len(d.SignalHistory))
	copy(out.SignalHistory, d.SignalHistory)
	if d.ConnectTime != nil {
		ct := *d.ConnectTime
		out.ConnectTime = &ct
	}
	out.DwellSeconds = d.LastSeen.Sub(d.FirstSeen).Seconds()
	return out
}
