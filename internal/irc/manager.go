// ABOUTME: Tracks the set of live chat connections and performs safe fan-out writes.
// ABOUTME: A write failure on one connection never aborts delivery to the rest.

package irc

import (
	"log/slog"
	"sync"
)

// Manager owns the live connection set. It is read concurrently by the
// dispatch path and the mesh event relay, and mutated on connect/disconnect.
type Manager struct {
	mu     sync.RWMutex
	conns  map[*Conn]struct{}
	logger *slog.Logger
}

// NewManager creates an empty connection manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		conns:  make(map[*Conn]struct{}),
		logger: logger,
	}
}

// Add registers a connection for fan-out delivery.
func (m *Manager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c] = struct{}{}
	m.logger.Info("client connected", "nick", c.Nick(), "total_clients", len(m.conns))
}

// Remove drops a connection from the set.
func (m *Manager) Remove(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[c]; ok {
		delete(m.conns, c)
		m.logger.Info("client disconnected", "nick", c.Nick(), "total_clients", len(m.conns))
	}
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// snapshot copies the connection set so fan-out runs without the lock held.
func (m *Manager) snapshot() []*Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Conn, 0, len(m.conns))
	for c := range m.conns {
		out = append(out, c)
	}
	return out
}

// Broadcast writes a raw line to every live connection. Individual write
// failures are logged and skipped.
func (m *Manager) Broadcast(line string) {
	for _, c := range m.snapshot() {
		if !c.Alive() {
			continue
		}
		if err := c.SendRaw(line); err != nil {
			m.logger.Error("broadcast write failed", "nick", c.Nick(), "error", err)
		}
	}
}

// RelayChat writes a raw line to every live connection in the control channel
// except the originating one.
func (m *Manager) RelayChat(origin *Conn, line string) {
	for _, c := range m.snapshot() {
		if c == origin || !c.Alive() || !c.Joined() {
			continue
		}
		if err := c.SendRaw(line); err != nil {
			m.logger.Error("relay write failed", "nick", c.Nick(), "error", err)
		}
	}
}

// JoinedNicks returns the nicknames of every connection in the control channel.
func (m *Manager) JoinedNicks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.conns))
	for c := range m.conns {
		if c.Joined() {
			out = append(out, c.Nick())
		}
	}
	return out
}

// CloseAll notices every client and closes their connections, used at shutdown.
func (m *Manager) CloseAll(reason string) {
	for _, c := range m.snapshot() {
		c.Notice(reason)
		c.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns = make(map[*Conn]struct{})
}
