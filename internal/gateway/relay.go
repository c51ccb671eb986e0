// ABOUTME: Mesh event relay: reformats inbound mesh events into control-channel lines.
// ABOUTME: One faulty event never stops the stream; failures surface as [GW ERROR].

package gateway

import (
	"fmt"
	"strconv"

	"github.com/2389/mesh-gateway/internal/mesh"
)

// handleMeshEvent is the single entry point for the mesh backend's event
// stream. The backend may call it from any goroutine, concurrently with
// connection handling.
func (g *Gateway) handleMeshEvent(ev *mesh.Event) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("mesh event relay panicked",
				"event_id", ev.ID, "kind", ev.Kind.String(), "panic", r)
			g.broadcastServerMessage("[GW ERROR]", "Error processing mesh packet.")
		}
	}()

	switch ev.Kind {
	case mesh.KindText:
		g.relayText(ev)
	case mesh.KindPingReply:
		g.relayPingReply(ev)
	case mesh.KindConnection:
		g.logger.Info("mesh connection status", "status", ev.Status)
		g.broadcastServerMessage("[MESH]", "Mesh status: "+ev.Status)
	case mesh.KindNodeUpdated:
		g.relayNodeUpdate(ev)
	default:
		g.logger.Debug("ignoring mesh event of unknown kind", "event_id", ev.ID, "kind", int(ev.Kind))
	}
}

// relayText renders broadcast traffic onto the control channel. Directed
// messages pass through only when addressed to the gateway itself.
func (g *Gateway) relayText(ev *mesh.Event) {
	prefix := fmt.Sprintf("[MESH Rx ch%d RSSI:%d SNR:%.1f]", ev.Channel, ev.RSSI, ev.SNR)
	name := g.displayName(ev.From)

	if ev.Broadcast {
		g.broadcastServerMessage(prefix, fmt.Sprintf("<%s> %s", name, ev.Text))
		return
	}

	id := g.meshIface.OwnIdentity()
	if ev.To != id.ID && ev.To != strconv.FormatUint(uint64(id.Num), 10) {
		g.logger.Debug("ignoring directed message for another node",
			"from", ev.From, "to", ev.To)
		return
	}
	g.broadcastServerMessage(prefix, fmt.Sprintf("DM From <%s>: %s", name, ev.Text))
}

// relayPingReply renders a PONG notice with signal metrics and payload.
func (g *Gateway) relayPingReply(ev *mesh.Event) {
	payload := "N/A"
	if len(ev.Payload) > 0 {
		payload = strconv.Quote(string(ev.Payload))
	}
	g.broadcastServerMessage("[PING]",
		fmt.Sprintf("PONG reply from <%s> RSSI:%d SNR:%.1f Payload:%s",
			g.displayName(ev.From), ev.RSSI, ev.SNR, payload))
}

// relayNodeUpdate announces a new or changed node, suppressing repeats for
// the same node within the configured window.
func (g *Gateway) relayNodeUpdate(ev *mesh.Event) {
	node := ev.Node
	if node == nil {
		g.logger.Warn("node-updated event without node payload", "event_id", ev.ID)
		return
	}
	if g.nodeUpdates.Suppress(node.ID) {
		g.logger.Debug("suppressed repeated node update", "node_id", node.ID)
		return
	}
	g.broadcastServerMessage("[MESH]",
		fmt.Sprintf("Node updated: %s (%s)", node.DisplayName(), node.ID))
}

// displayName resolves a canonical id to the friendliest known name, falling
// back to the id itself for nodes not in the directory.
func (g *Gateway) displayName(nodeID string) string {
	for _, n := range g.meshIface.Nodes() {
		if n.ID == nodeID {
			return n.DisplayName()
		}
	}
	return nodeID
}
