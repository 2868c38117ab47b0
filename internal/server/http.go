package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/strategyforge/internal/core/observability/log"
)

type health struct {
	Status  string `json:"status"`
	Match   string `json:"match"`
	Tick    uint64 `json:"tick"`
	Clients int    `json:"clients"`
}

// Handler routes the spectator endpoints:
//
//	GET /ws        websocket feed of snapshots and events
//	GET /snapshot  the current snapshot as JSON
//	GET /healthz   liveness with the current tick
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	snap := s.world.Snapshot()
	s.mu.Unlock()
	s.writeJSON(w, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, health{
		Status:  "ok",
		Match:   s.match,
		Tick:    s.CurrentTick(),
		Clients: s.hub.len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", log.Error(err))
	}
}
