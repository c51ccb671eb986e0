// ABOUTME: In-process simulated mesh backend for development and tests.
// ABOUTME: Owns its node table outright and exposes only thread-safe accessors.

package mesh

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Simulator default timing. Tests shrink these through the struct fields
// before any traffic is generated.
const (
	simMessageEvery = 45 * time.Second
	simNewNodeAfter = 60 * time.Second
	simPongDelay    = 1500 * time.Millisecond
)

// Simulator is a mesh backend that fabricates traffic instead of driving a
// radio. It seeds a small node table, emits a simulated broadcast text on a
// timer, surfaces one late-appearing node, and answers pings with a delayed
// reply event.
type Simulator struct {
	mu       sync.RWMutex
	nodes    map[string]*NodeEntry
	onEvent  func(*Event)
	identity Identity
	logger   *slog.Logger

	messageEvery time.Duration
	newNodeAfter time.Duration
	pongDelay    time.Duration

	done   chan struct{}
	closed bool
}

// NewSimulator creates a simulator with the default node table and timing.
// Traffic generation starts when Start is called.
func NewSimulator(logger *slog.Logger) *Simulator {
	now := time.Now()
	s := &Simulator{
		nodes: map[string]*NodeEntry{
			"!MOCKNODE1": {
				ID: "!MOCKNODE1", Num: 1111, ShortName: "MK1", LongName: "Mock Node 1",
				LastHeard: now.Add(-time.Minute), SNR: 10.0, RSSI: -70,
			},
			"!MOCKNODE2": {
				ID: "!MOCKNODE2", Num: 2222, ShortName: "MK2", LongName: "Mock Node 2",
				LastHeard: now.Add(-2 * time.Minute), SNR: -5.5, RSSI: -92,
			},
			"!MYNODEID": {
				ID: "!MYNODEID", Num: 12345678, ShortName: "GW", LongName: "Gateway Node",
				LastHeard: now, SNR: 0, RSSI: 0,
				Position: &Position{Latitude: 42.886, Longitude: -79.249, Altitude: 180, Time: now},
				Metrics:  &DeviceMetrics{BatteryLevel: 100, Voltage: 4.1, AirUtilTx: 1.2, UptimeSeconds: 60},
			},
		},
		identity:     Identity{ID: "!MYNODEID", Num: 12345678},
		logger:       logger,
		messageEvery: simMessageEvery,
		newNodeAfter: simNewNodeAfter,
		pongDelay:    simPongDelay,
		done:         make(chan struct{}),
	}
	return s
}

// Start launches the background traffic generators.
func (s *Simulator) Start() {
	go s.generateTraffic()
	go s.appearNewNode()
	s.logger.Info("mesh simulator started", "own_id", s.identity.ID, "nodes", len(s.nodes))
}

// SendBroadcast queues a channel-wide text message. The simulator just logs it.
func (s *Simulator) SendBroadcast(text string, channel int) error {
	s.logger.Info("simulated broadcast", "channel", channel, "len", len(text))
	return nil
}

// SendDirected queues a text message to one node. Acknowledgments are not
// simulated; a real backend reports them as events.
func (s *Simulator) SendDirected(text, destID string, wantAck bool) error {
	s.logger.Info("simulated direct message", "dest", destID, "want_ack", wantAck, "len", len(text))
	return nil
}

// SendPing queues a ping probe. Known destinations get a reply event after a
// short delay; unknown destinations fail immediately.
func (s *Simulator) SendPing(destID string) error {
	s.mu.RLock()
	_, known := s.nodes[destID]
	s.mu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownNode, destID)
	}

	probe := uuid.NewString()
	s.logger.Info("simulated ping", "dest", destID, "probe", probe)
	time.AfterFunc(s.pongDelay, func() {
		select {
		case <-s.done:
			return
		default:
		}
		s.emit(&Event{
			ID:      uuid.NewString(),
			Kind:    KindPingReply,
			From:    destID,
			To:      strconv.FormatUint(uint64(s.identity.Num), 10),
			RSSI:    -65,
			SNR:     9.0,
			Payload: []byte("pong " + probe),
		})
	})
	return nil
}

// OwnIdentity reports the simulator's fixed gateway identity.
func (s *Simulator) OwnIdentity() Identity {
	return s.identity
}

// Nodes returns a deep copy of the node table.
func (s *Simulator) Nodes() []*NodeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*NodeEntry, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, copyNode(n))
	}
	return out
}

// Subscribe registers the inbound-event callback.
func (s *Simulator) Subscribe(fn func(*Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// Close stops traffic generation. Safe to call more than once.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// emit delivers an event to the subscriber, if any. The callback runs without
// the simulator lock held.
func (s *Simulator) emit(ev *Event) {
	s.mu.RLock()
	fn := s.onEvent
	s.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

// generateTraffic emits a simulated broadcast text on a timer, touching the
// sender's node entry each round so node-updated suppression gets exercised.
func (s *Simulator) generateTraffic() {
	ticker := time.NewTicker(s.messageEvery)
	defer ticker.Stop()

	counter := 0
	for {
		select {
		case <-ticker.C:
			counter++
			s.touchNode("!MOCKNODE1")
			s.emit(&Event{
				ID:        uuid.NewString(),
				Kind:      KindText,
				From:      "!MOCKNODE1",
				Broadcast: true,
				Channel:   0,
				RSSI:      -70 + counter,
				SNR:       8.5 - float64(counter)*0.5,
				Text:      fmt.Sprintf("Simulated mesh message #%d.", counter),
			})
			s.emit(&Event{
				ID:   uuid.NewString(),
				Kind: KindNodeUpdated,
				From: "!MOCKNODE1",
				Node: s.snapshotNode("!MOCKNODE1"),
			})
		case <-s.done:
			return
		}
	}
}

// appearNewNode adds one node to the table after a delay and announces it.
func (s *Simulator) appearNewNode() {
	select {
	case <-time.After(s.newNodeAfter):
	case <-s.done:
		return
	}

	node := &NodeEntry{
		ID: "!NEWNODE3", Num: 3333, ShortName: "NEW", LongName: "Newly Seen Node",
		LastHeard: time.Now(), SNR: 5.0, RSSI: -80,
	}
	s.mu.Lock()
	s.nodes[node.ID] = node
	s.mu.Unlock()

	s.logger.Info("simulated node appeared", "node_id", node.ID)
	s.emit(&Event{
		ID:   uuid.NewString(),
		Kind: KindNodeUpdated,
		From: node.ID,
		Node: copyNode(node),
	})
}

// touchNode refreshes a node's last-heard timestamp.
func (s *Simulator) touchNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.LastHeard = time.Now()
	}
}

// snapshotNode returns a copy of one node entry, or nil if absent.
func (s *Simulator) snapshotNode(id string) *NodeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return copyNode(n)
	}
	return nil
}

func copyNode(n *NodeEntry) *NodeEntry {
	c := *n
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	if n.Metrics != nil {
		m := *n.Metrics
		c.Metrics = &m
	}
	return &c
}
