package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/strategyforge/internal/core/observability/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket upgrades a spectator, queues the current snapshot and then
// streams every broadcast until either side closes. Spectators only read;
// anything they send is discarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err := s.hub.admit(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	logger := s.logger.With(log.String("client", c.id), log.String("remote", r.RemoteAddr))

	if err := s.join(c); err != nil {
		logger.Warn("Spectator rejected", log.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	logger.Info("Spectator connected")

	go s.writePump(conn, c, logger)
	s.readPump(conn, c)
	logger.Info("Spectator disconnected")
}

// join registers c and queues the current snapshot while holding the world
// lock, so no broadcast can slip in ahead of it.
func (s *Server) join(c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, err := s.snapshotFrame()
	if err != nil {
		return err
	}
	if err := s.hub.add(c); err != nil {
		return err
	}
	c.send <- frame
	return nil
}

func (s *Server) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		s.hub.remove(c.id)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Spectator read failed", log.String("client", c.id), log.Error(err))
			}
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, c *client, logger log.Log) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					logger.Debug("Spectator write failed", log.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
