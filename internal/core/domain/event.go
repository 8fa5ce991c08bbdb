package domain

// DeviceStatus is the reported association state of a device.
type DeviceStatus string

const (
	// StatusNearby covers probing devices that have not associated.
	StatusNearby DeviceStatus = "NEARBY"
	// StatusConnected means the device completed association with the AP.
	StatusConnected DeviceStatus = "CONNECTED"
)

// DeviceEvent is one parsed [DEVICE] line from the beacon firmware.
type DeviceEvent struct {
	MAC    string       `json:"mac"`
	RSSI   int          `json:"rssi"`
	Status DeviceStatus `json:"status"`
	IP     string       `json:"ip,omitempty"`
}

// StatsEvent is one parsed [STATS] line. TotalProbes and TotalConnections
// are running counters reported by the firmware, not deltas. The engine
// records the latest reported value without a monotonicity check; if the
// device restarts mid-session the counters simply restart with it.
type StatsEvent struct {
	Connected        int `json:"connected"`
	Nearby           int `json:"nearby"`
	TotalProbes      int `json:"total_probes"`
	TotalConnections int `json:"total_connections"`
}
