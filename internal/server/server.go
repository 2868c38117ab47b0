// Package server runs the simulation loop and streams it to spectators over
// websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/strategyforge/internal/config"
	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/game/world"
)

const shutdownTimeout = 5 * time.Second

const (
	MessageSnapshot = "snapshot"
	MessageEvents   = "events"
)

// Message is the frame sent to spectators.
type Message struct {
	Type  string `json:"type"`
	Match string `json:"match"`
	Tick  uint64 `json:"tick"`
	Data  any    `json:"data"`
}

// Server owns the world and feeds it to spectators.
type Server struct {
	cfg    config.ServerConfig
	sim    config.SimulationConfig
	logger log.Log
	match  string

	// mu guards the world and the pending events. Bus handlers run inside
	// world.Step, so they already hold it.
	mu      sync.Mutex
	world   *world.World
	pending []bus.Event

	hub     *hub
	sub     bus.Subscription
	started atomic.Bool
	addr    atomic.Value
}

// New wires a server around w. events must be the bus w publishes on.
func New(cfg config.ServerConfig, sim config.SimulationConfig, w *world.World, events bus.EventBus, logger log.Log) (*Server, error) {
	switch {
	case w == nil:
		return nil, fmt.Errorf("%w: world is nil", ErrInvalidConfig)
	case events == nil:
		return nil, fmt.Errorf("%w: event bus is nil", ErrInvalidConfig)
	case cfg.BroadcastEvery <= 0:
		return nil, fmt.Errorf("%w: broadcast_every must be positive", ErrInvalidConfig)
	case cfg.MaxClients <= 0:
		return nil, fmt.Errorf("%w: max_clients must be positive", ErrInvalidConfig)
	case sim.TickRate <= 0:
		return nil, fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		cfg:   cfg,
		sim:   sim,
		match: uuid.NewString(),
		world: w,
		hub:   newHub(cfg.MaxClients),
	}
	s.logger = logger.Named("server").With(log.String("match", s.match))

	sub, err := events.Subscribe(bus.Wildcard, func(e bus.Event) error {
		s.pending = append(s.pending, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to events: %w", err)
	}
	s.sub = sub
	return s, nil
}

func (s *Server) Match() string { return s.match }

// Addr is the bound listen address once Run has started listening.
func (s *Server) Addr() string {
	if a, ok := s.addr.Load().(string); ok {
		return a
	}
	return ""
}

func (s *Server) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Tick()
}

// Advance steps the world once and, every BroadcastEvery ticks, sends the
// events collected since the last broadcast followed by a snapshot.
func (s *Server) Advance(dt float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.world.Step(dt); err != nil {
		return s.world.Tick(), err
	}
	tick := s.world.Tick()
	if tick%uint64(s.cfg.BroadcastEvery) != 0 {
		return tick, nil
	}

	if len(s.pending) > 0 {
		frame, err := json.Marshal(Message{Type: MessageEvents, Match: s.match, Tick: tick, Data: s.pending})
		s.pending = s.pending[:0]
		if err != nil {
			return tick, fmt.Errorf("encode events: %w", err)
		}
		s.broadcast(frame)
	}

	frame, err := s.snapshotFrame()
	if err != nil {
		return tick, err
	}
	s.broadcast(frame)
	return tick, nil
}

func (s *Server) snapshotFrame() ([]byte, error) {
	snap := s.world.Snapshot()
	frame, err := json.Marshal(Message{Type: MessageSnapshot, Match: s.match, Tick: snap.Tick, Data: snap})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return frame, nil
}

func (s *Server) broadcast(frame []byte) {
	for _, id := range s.hub.broadcast(frame) {
		s.logger.Warn("Dropped lagging spectator", log.String("client", id))
	}
}

// Run serves spectators and drives the tick loop until ctx is done or the
// configured tick limit is reached. Either way it shuts the listener down
// and returns nil; a failing tick or listener is returned as an error.
func (s *Server) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer func() { _ = s.sub.Cancel() }()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.addr.Store(ln.Addr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		s.hub.closeAll()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer cancel()
		return s.loop(ctx)
	})

	err = g.Wait()
	s.logger.Info("Server stopped", log.Uint64("tick", s.CurrentTick()), log.Error(err))
	return err
}

func (s *Server) loop(ctx context.Context) error {
	interval := s.sim.TickInterval()
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tick, err := s.Advance(dt)
			if err != nil {
				return fmt.Errorf("tick %d: %w", tick, err)
			}
			if s.sim.MaxTicks > 0 && tick >= s.sim.MaxTicks {
				s.logger.Info("Tick limit reached", log.Uint64("tick", tick))
				return nil
			}
		}
	}
}
