package server

import (
	"sync"
)

// sendBuffer is the number of queued frames a spectator may lag behind
// before it is dropped.
const sendBuffer = 32

type client struct {
	id   string
	send chan []byte
}

// hub fans frames out to connected spectators. It never blocks on a slow
// client.
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	closed  bool
}

func newHub(limit int) *hub {
	return &hub{clients: make(map[string]*client), limit: limit}
}

func (h *hub) add(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrServerClosed
	}
	if len(h.clients) >= h.limit {
		return ErrMaxClientsReached
	}
	h.clients[c.id] = c
	return nil
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *hub) removeLocked(id string) {
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// admit reports why a new spectator would be refused, if it would be.
func (h *hub) admit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.closed:
		return ErrServerClosed
	case len(h.clients) >= h.limit:
		return ErrMaxClientsReached
	}
	return nil
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast queues frame for every client and returns the ids of the clients
// dropped for lagging.
func (h *hub) broadcast(frame []byte) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var dropped []string
	for id, c := range h.clients {
		select {
		case c.send <- frame:
		default:
			dropped = append(dropped, id)
		}
	}
	for _, id := range dropped {
		h.removeLocked(id)
	}
	return dropped
}

// closeAll disconnects every spectator and refuses new ones from then on.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
}
