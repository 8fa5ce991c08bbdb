// Package parser turns raw monitor lines into typed events. The firmware
// emits one message per line in two shapes:
//
//	[DEVICE] MAC:AA:BB:CC:DD:EE:FF | RSSI:-45 | STATUS:CONNECTED | IP:192.168.4.2
//	[STATS] CONNECTED:5 | NEARBY:12 | TOTAL_PROBES:156 | TOTAL_CONNECTS:23
//
// Fields are matched by label, not position, so they may appear in any
// order. A line missing a required field, or with a non-numeric value in
// a numeric field, is classified Unrecognized rather than producing a
// partial event.
package parser

import (
	"strconv"
	"strings"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// Kind tags the parse result.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindDevice
	KindStats
)

const (
	deviceTag = "[DEVICE]"
	statsTag  = "[STATS]"
)

// Result is the tagged outcome of parsing one line.
type Result struct {
	Kind   Kind
	Device domain.DeviceEvent
	Stats  domain.StatsEvent
	Line   string // original input, kept for the diagnostic sink
}

// Parse classifies one raw line. It never fails: anything that does not
// match a message shape comes back as KindUnrecognized.
func Parse(line string) Result {
	res := Result{Kind: KindUnrecognized, Line: line}
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.Contains(trimmed, deviceTag):
		if ev, ok := parseDevice(trimmed); ok {
			res.Kind = KindDevice
			res.Device = ev
		}
	case strings.Contains(trimmed, statsTag):
		if ev, ok := parseStats(trimmed); ok {
			res.Kind = KindStats
			res.Stats = ev
		}
	}
	return res
}

func parseDevice(line string) (domain.DeviceEvent, bool) {
	f := splitFields(strings.Replace(line, deviceTag, "", 1))

	mac, okMAC := f["MAC"]
	rssiStr, okRSSI := f["RSSI"]
	status, okStatus := f["STATUS"]
	if !okMAC || !okRSSI || !okStatus {
		return domain.DeviceEvent{}, false
	}

	mac = strings.ToUpper(mac)
	if !validMAC(mac) {
		return domain.DeviceEvent{}, false
	}

	rssi, err := strconv.Atoi(rssiStr)
	if err != nil {
		return domain.DeviceEvent{}, false
	}

	return domain.DeviceEvent{
		MAC:    mac,
		RSSI:   rssi,
		Status: normalizeStatus(status),
		IP:     f["IP"],
	}, true
}

func parseStats(line string) (domain.StatsEvent, bool) {
	f := splitFields(strings.Replace(line, statsTag, "", 1))

	connected, err1 := parseUint(f, "CONNECTED")
	nearby, err2 := parseUint(f, "NEARBY")
	probes, err3 := parseUint(f, "TOTAL_PROBES")
	connects, err4 := parseUint(f, "TOTAL_CONNECTS")
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return domain.StatsEvent{}, false
	}

	return domain.StatsEvent{
		Connected:        connected,
		Nearby:           nearby,
		TotalProbes:      probes,
		TotalConnections: connects,
	}, true
}

// splitFields tokenizes "LABEL:value | LABEL:value" segments into a map.
// The label ends at the first colon; the value may itself contain colons
// (MAC addresses do).
func splitFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, seg := range strings.Split(s, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		label, value, found := strings.Cut(seg, ":")
		if !found {
			continue
		}
		label = strings.ToUpper(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if label == "" || value == "" {
			continue
		}
		fields[label] = value
	}
	return fields
}

func parseUint(fields map[string]string, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// normalizeStatus collapses any non-CONNECTED token into NEARBY. The
// firmware reports PROBING and NEARBY interchangeably for unassociated
// devices.
func normalizeStatus(token string) domain.DeviceStatus {
	if strings.EqualFold(strings.TrimSpace(token), string(domain.StatusConnected)) {
		return domain.StatusConnected
	}
	return domain.StatusNearby
}

func validMAC(mac string) bool {
	if len(mac) == 0 {
		return false
	}
	groups := strings.Split(mac, ":")
	if len(groups) < 2 {
		return false
	}
	for _, g := range groups {
		if g == "" {
			return false
		}
		for _, c := range g {
			if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
	}
	return true
}
