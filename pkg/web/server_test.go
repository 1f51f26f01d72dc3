package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/markersteer/pkg/steering"
	"github.com/teslashibe/markersteer/pkg/tracking"
)

func getJSON(t *testing.T, s *Server, path string, out any) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

func TestServer_SignalEndpoint(t *testing.T) {
	s := NewServer("0", steering.DefaultGeometry())

	var initial steering.Signal
	assert.Equal(t, 200, getJSON(t, s, "/api/signal", &initial))
	assert.False(t, initial.HasTarget)
	assert.Equal(t, -1, initial.MarkerID)

	s.PublishSignal(steering.Signal{Position: 0.4, Distance: 1500, HasTarget: true, MarkerID: 7, Valid: true})

	var got steering.Signal
	assert.Equal(t, 200, getJSON(t, s, "/api/signal", &got))
	assert.Equal(t, 0.4, got.Position)
	assert.Equal(t, 1500.0, got.Distance)
	assert.Equal(t, 7, got.MarkerID)
}

func TestServer_GeometryEndpoint(t *testing.T) {
	g := steering.DefaultGeometry()
	g.MarkerTrueSize = 200
	s := NewServer("0", g)

	var got steering.Geometry
	assert.Equal(t, 200, getJSON(t, s, "/api/geometry", &got))
	assert.Equal(t, g, got)
}

func TestServer_StatsEndpoint(t *testing.T) {
	s := NewServer("0", steering.DefaultGeometry())

	assert.Equal(t, 503, getJSON(t, s, "/api/stats", nil))

	s.OnStats = func() tracking.Stats { return tracking.Stats{Frames: 10, Targets: 4} }
	var got tracking.Stats
	assert.Equal(t, 200, getJSON(t, s, "/api/stats", &got))
	assert.Equal(t, uint64(10), got.Frames)
	assert.Equal(t, uint64(4), got.Targets)
}

func TestServer_WebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer("0", steering.DefaultGeometry())
	assert.Equal(t, 426, getJSON(t, s, "/ws/signal", nil))
}

func TestServer_SignalWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer("0", steering.DefaultGeometry())
	s.PublishSignal(steering.Signal{Position: -0.3, HasTarget: true, MarkerID: 1, Valid: true})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ctx, ln)

	conn, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/signal", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first steering.Signal
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, -0.3, first.Position, "latest signal is sent on connect")

	deadline := time.Now().Add(2 * time.Second)
	for s.SignalClients() == 0 {
		require.True(t, time.Now().Before(deadline), "client never registered")
		time.Sleep(5 * time.Millisecond)
	}

	s.PublishSignal(steering.Signal{Position: 0.9, Distance: 800, HasTarget: true, MarkerID: 2, Valid: true})

	// The pre-connect broadcast may still be in flight; skip until the new signal arrives
	var next steering.Signal
	for next.MarkerID != 2 {
		require.NoError(t, conn.ReadJSON(&next))
	}
	assert.Equal(t, 0.9, next.Position)
	assert.Equal(t, 800.0, next.Distance)
}

func TestServer_StartAsyncPortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	_, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(port, steering.DefaultGeometry())
	err = s.StartAsync(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), port)
}

func TestServer_StartAsyncServes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer("0", steering.DefaultGeometry())
	require.NoError(t, s.StartAsync(ctx))
}
