// Package web pushes live session updates to dashboard clients.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
	"github.com/lcalzada-xor/crowdwatch/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard is served from the same process; no cross-origin use.
		return true
	},
}

// WSMessage is the envelope for every websocket push.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Summary is the periodic live-state push.
type Summary struct {
	LastUpdated    time.Time            `json:"last_updated"`
	Stale          bool                 `json:"stale"`
	UniqueDevices  int                  `json:"unique_devices"`
	ConnectionRate float64              `json:"connection_rate"`
	Clients        int                  `json:"clients"`
	Latest         *domain.StatsSample  `json:"latest,omitempty"`
	Window         []domain.StatsSample `json:"window"`
}

// WSManager tracks dashboard connections and broadcasts a state summary
// on a fixed sweep interval.
type WSManager struct {
	provider ports.SnapshotProvider
	staleTTL time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWSManager creates a manager broadcasting snapshots from provider.
func NewWSManager(provider ports.SnapshotProvider, staleTTL time.Duration) *WSManager {
	return &WSManager{
		provider: provider,
		staleTTL: staleTTL,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// Start launches the broadcast loop.
func (m *WSManager) Start(ctx context.Context) {
	go m.broadcastLoop(ctx)
}

// HandleWebSocket upgrades the connection and registers the client.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "error", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	slog.Info("websocket connected", "remote", conn.RemoteAddr().String())

	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			slog.Info("websocket disconnected", "remote", conn.RemoteAddr().String())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *WSManager) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.broadcastSummary()
		}
	}
}

func (m *WSManager) broadcastSummary() {
	snap := m.provider.Snapshot()

	summary := Summary{
		LastUpdated:    snap.LastUpdated,
		Stale:          snap.IsStale(m.staleTTL),
		UniqueDevices:  snap.UniqueDevices(),
		ConnectionRate: snap.ConnectionRate,
		Clients:        m.ClientCount(),
		Window:         snap.Window,
	}
	if latest, ok := snap.Latest(); ok {
		summary.Latest = &latest
	}

	m.Broadcast(WSMessage{Type: "summary", Payload: summary})
}

// Broadcast sends a message to every connected client. Clients that fail
// the write are dropped.
func (m *WSManager) Broadcast(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

// ClientCount returns the number of connected dashboard clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}
