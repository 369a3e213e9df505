package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub holds every authenticated connection of this process, keyed by session id.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Connection)}
}

func (h *Hub) attach(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) detach(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c.ID())
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) snapshot() []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

// DeliverAll sends ev to every local connection and returns how many accepted it.
func (h *Hub) DeliverAll(ev Event) int {
	delivered := 0
	for _, c := range h.snapshot() {
		if c.send(ev) {
			delivered++
		}
	}
	return delivered
}

// Deliver sends ev to the given local sessions. Ids not held by this hub are skipped.
func (h *Hub) Deliver(sessionIDs []string, ev Event) int {
	if len(sessionIDs) == 0 {
		return 0
	}

	h.mu.RLock()
	targets := make([]*Connection, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if c, ok := h.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.send(ev) {
			delivered++
		} else {
			logrus.WithFields(logrus.Fields{
				"session_id": c.ID(),
				"user_id":    c.UserID(),
				"event":      ev.Name,
			}).Warn("Event dropped for session")
		}
	}
	return delivered
}
