// Package mock provides a synthetic line feed for development without
// monitoring hardware.
package mock

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Vendor OUI prefixes (first 3 bytes of MAC)
var vendorPrefixes = []string{
	"00:17:F2", // Apple
	"00:12:FB", // Samsung
	"F4:F5:D8", // Google
	"34:CE:00", // Xiaomi
	"00:E0:FC", // Huawei
	"00:13:02", // Intel
	"00:1C:62", // LG
	"00:13:A9", // Sony
}

// Feed emits synthetic [DEVICE] and [STATS] lines shaped like the
// firmware's serial output, including the occasional boot chatter the
// parser must reject.
type Feed struct {
	interval time.Duration
	rand     *rand.Rand
	lines    chan string

	population  []*walker
	totalProbes int
	totalConns  int
}

// walker is one simulated visitor whose signal drifts over time.
type walker struct {
	mac       string
	rssi      int
	connected bool
}

// NewFeed creates a mock feed emitting a burst of lines every interval.
func NewFeed(interval time.Duration) *Feed {
	return &Feed{
		interval: interval,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		lines:    make(chan string, 64),
	}
}

// Lines returns the channel of generated lines. It is closed when Start
// returns.
func (f *Feed) Lines() <-chan string {
	return f.lines
}

// Start generates lines until the context is cancelled.
func (f *Feed) Start(ctx context.Context) error {
	defer close(f.lines)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	if err := f.emit(ctx, "boot: softap firmware v2.1 ready"); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (f *Feed) tick(ctx context.Context) error {
	f.evolve()

	for _, w := range f.population {
		if f.rand.Float64() < 0.6 {
			continue
		}
		status := "NEARBY"
		if w.connected {
			status = "CONNECTED"
		}
		line := fmt.Sprintf("[DEVICE] MAC:%s | RSSI:%d | STATUS:%s", w.mac, w.rssi, status)
		if err := f.emit(ctx, line); err != nil {
			return err
		}
	}

	connected, nearby := f.headcount()
	line := fmt.Sprintf("[STATS] CONNECTED:%d | NEARBY:%d | TOTAL_PROBES:%d | TOTAL_CONNECTS:%d",
		connected, nearby, f.totalProbes, f.totalConns)
	if err := f.emit(ctx, line); err != nil {
		return err
	}

	// Rare noise line, as real firmware produces.
	if f.rand.Float64() < 0.05 {
		return f.emit(ctx, "wifi: event 12, reason 4")
	}
	return nil
}

// evolve moves the simulated crowd one step: arrivals, departures,
// signal drift and connection attempts.
func (f *Feed) evolve() {
	if len(f.population) < 3 || f.rand.Float64() < 0.3 {
		f.population = append(f.population, &walker{
			mac:  f.generateMAC(),
			rssi: -40 - f.rand.Intn(40),
		})
	}
	if len(f.population) > 1 && f.rand.Float64() < 0.15 {
		idx := f.rand.Intn(len(f.population))
		f.population = append(f.population[:idx], f.population[idx+1:]...)
	}

	for _, w := range f.population {
		w.rssi += f.rand.Intn(7) - 3
		if w.rssi > -30 {
			w.rssi = -30
		}
		if w.rssi < -90 {
			w.rssi = -90
		}

		f.totalProbes++
		if !w.connected && f.rand.Float64() < 0.2 {
			w.connected = true
			f.totalConns++
		}
	}
}

func (f *Feed) headcount() (connected, nearby int) {
	for _, w := range f.population {
		if w.connected {
			connected++
		} else {
			nearby++
		}
	}
	return connected, nearby
}

func (f *Feed) generateMAC() string {
	prefix := vendorPrefixes[f.rand.Intn(len(vendorPrefixes))]
	return fmt.Sprintf("%s:%02X:%02X:%02X",
		prefix, f.rand.Intn(256), f.rand.Intn(256), f.rand.Intn(256))
}

func (f *Feed) emit(ctx context.Context, line string) error {
	select {
	case f.lines <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
