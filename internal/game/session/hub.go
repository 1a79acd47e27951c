package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Hub tracks connected clients and broadcasts to them.
// All methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Outbox
	logger  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*Outbox), logger: logger}
}

// Add registers an outbox.
//
// Postcondition: Returns an error if a client with the same id is connected.
func (h *Hub) Add(o *Outbox) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[o.ID()]; ok {
		return fmt.Errorf("client %q already connected", o.ID())
	}
	h.clients[o.ID()] = o
	return nil
}

// Remove unregisters and closes the outbox for id. Unknown ids are ignored.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	o, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		_ = o.Close()
	}
}

// Broadcast pushes data to every client. A client whose buffer is full
// misses this message; it is logged and stays connected.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, o := range h.clients {
		if err := o.Push(data); err != nil {
			h.logger.Warn("dropping broadcast", zap.String("client", id), zap.Error(err))
		}
	}
}

// Clients returns the ids of connected clients, sorted.
func (h *Hub) Clients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
