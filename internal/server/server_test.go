package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strategyforge/internal/config"
	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/module"
	"github.com/zeusync/strategyforge/internal/game/world"
)

type frame struct {
	Type  string          `json:"type"`
	Match string          `json:"match"`
	Tick  uint64          `json:"tick"`
	Data  json.RawMessage `json:"data"`
}

func newServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.Server.BroadcastEvery = 1
	cfg.Scenario = config.Scenario{
		Bases: []config.BaseSpec{{
			Name: "alpha",
			Team: models.TeamPlayer,
			Modules: []config.ModuleSpec{
				{Kind: module.KindWeapon, Weapon: &module.Weapon{Damage: 10, AttackSpeed: 1, Range: 50}},
			},
		}},
		Targets: []config.TargetSpec{{Name: "dummy", Team: models.TeamEnemy, Position: physics.V(5, 0), Health: 100}},
	}
	if mutate != nil {
		mutate(cfg)
	}

	events := bus.New()
	w, err := world.New(world.SettingsFromConfig(cfg.Simulation), world.WithEventBus(events))
	require.NoError(t, err)
	require.NoError(t, w.Populate(cfg.Scenario))

	s, err := New(cfg.Server, cfg.Simulation, w, events, nil)
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, ts *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	return websocket.DefaultDialer.Dial(u, nil)
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestNewRejectsBadConfig(t *testing.T) {
	events := bus.New()
	w, err := world.New(world.DefaultSettings())
	require.NoError(t, err)
	cfg := config.Default()

	_, err = New(cfg.Server, cfg.Simulation, nil, events, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := cfg.Server
	bad.BroadcastEvery = 0
	_, err = New(bad, cfg.Simulation, w, events, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSpectatorReceivesSnapshotThenEvents(t *testing.T) {
	s := newServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dial(t, ts, "")
	require.NoError(t, err)
	defer conn.Close()

	first := read(t, conn)
	assert.Equal(t, MessageSnapshot, first.Type)
	assert.Equal(t, s.Match(), first.Match)
	assert.Zero(t, first.Tick)

	tick, err := s.Advance(0.1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tick)

	events := read(t, conn)
	require.Equal(t, MessageEvents, events.Type)
	assert.Equal(t, uint64(1), events.Tick)
	var batch []bus.Event
	require.NoError(t, json.Unmarshal(events.Data, &batch))
	var types []string
	for _, e := range batch {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "module.power_changed")
	assert.Contains(t, types, "projectile.spawned")

	snap := read(t, conn)
	require.Equal(t, MessageSnapshot, snap.Type)
	var decoded world.Snapshot
	require.NoError(t, json.Unmarshal(snap.Data, &decoded))
	assert.Equal(t, uint64(1), decoded.Tick)
	assert.Len(t, decoded.Projectiles, 1)
}

func TestBroadcastCadence(t *testing.T) {
	s := newServer(t, func(c *config.Config) {
		c.Server.BroadcastEvery = 3
		c.Scenario = config.Scenario{}
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dial(t, ts, "")
	require.NoError(t, err)
	defer conn.Close()
	read(t, conn)

	for i := 0; i < 3; i++ {
		_, err := s.Advance(0.1)
		require.NoError(t, err)
	}
	f := read(t, conn)
	assert.Equal(t, MessageSnapshot, f.Type, "an empty world has no events to send")
	assert.Equal(t, uint64(3), f.Tick)
}

func TestTokenRequired(t *testing.T) {
	s := newServer(t, func(c *config.Config) { c.Server.Token = "secret" })
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, resp, err := dial(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _, err = dial(t, ts, "?token=wrong")
	require.Error(t, err)

	conn, _, err := dial(t, ts, "?token=secret")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, MessageSnapshot, read(t, conn).Type)

	res, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestMaxClients(t *testing.T) {
	s := newServer(t, func(c *config.Config) { c.Server.MaxClients = 1 })
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dial(t, ts, "")
	require.NoError(t, err)
	defer conn.Close()
	read(t, conn)

	_, resp, err := dial(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSpectatorsRefusedAfterShutdown(t *testing.T) {
	s := newServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := dial(t, ts, "")
	require.NoError(t, err)
	defer conn.Close()
	read(t, conn)

	s.hub.closeAll()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	_, resp, err := dial(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// A spectator that passed admission just before shutdown is still refused.
	assert.ErrorIs(t, s.join(&client{id: "late", send: make(chan []byte, sendBuffer)}), ErrServerClosed)
	assert.Zero(t, s.hub.len())
}

func TestHTTPEndpoints(t *testing.T) {
	s := newServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, err := s.Advance(0.1)
	require.NoError(t, err)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var h health
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	res.Body.Close()
	assert.Equal(t, health{Status: "ok", Match: s.Match(), Tick: 1}, h)

	res, err = http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	var snap world.Snapshot
	require.NoError(t, json.NewDecoder(res.Body).Decode(&snap))
	res.Body.Close()
	assert.Equal(t, uint64(1), snap.Tick)
	require.Len(t, snap.Targets, 1)
	assert.Equal(t, "dummy", snap.Targets[0].Name)
}

func TestAdvanceRejectsBadDelta(t *testing.T) {
	s := newServer(t, nil)
	_, err := s.Advance(-1)
	assert.ErrorIs(t, err, world.ErrInvalidDelta)
}

func TestRunStopsAtTickLimit(t *testing.T) {
	s := newServer(t, func(c *config.Config) {
		c.Simulation.TickRate = 200
		c.Simulation.MaxTicks = 5
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, uint64(5), s.CurrentTick())
	assert.NotEmpty(t, s.Addr())

	assert.ErrorIs(t, s.Run(ctx), ErrServerAlreadyRunning)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.CurrentTick() > 0 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
