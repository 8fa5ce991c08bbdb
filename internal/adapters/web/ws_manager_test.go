package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

type fixedProvider struct {
	snap domain.SessionSnapshot
}

func (p *fixedProvider) Snapshot() domain.SessionSnapshot { return p.snap }

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWSManager_TracksAndBroadcastsClients(t *testing.T) {
	provider := &fixedProvider{snap: domain.SessionSnapshot{
		LastUpdated: time.Now(),
		Devices: map[string]domain.DeviceRecord{
			"AA:BB:CC:DD:EE:01": {MAC: "AA:BB:CC:DD:EE:01"},
		},
		ConnectionRate: 20.0,
	}}
	m := NewWSManager(provider, time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	first := dialWS(t, srv)
	second := dialWS(t, srv)
	_ = second

	require.Eventually(t, func() bool { return m.ClientCount() == 2 },
		time.Second, 10*time.Millisecond)

	m.broadcastSummary()

	var msg struct {
		Type    string  `json:"type"`
		Payload Summary `json:"payload"`
	}
	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, first.ReadJSON(&msg))

	assert.Equal(t, "summary", msg.Type)
	assert.Equal(t, 2, msg.Payload.Clients)
	assert.Equal(t, 1, msg.Payload.UniqueDevices)
	assert.Equal(t, 20.0, msg.Payload.ConnectionRate)
	assert.False(t, msg.Payload.Stale)
}

func TestWSManager_DropsDisconnectedClients(t *testing.T) {
	m := NewWSManager(&fixedProvider{}, time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv)
	require.Eventually(t, func() bool { return m.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return m.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
