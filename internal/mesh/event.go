// ABOUTME: Inbound mesh event types delivered to the gateway's subscribe callback.
// ABOUTME: A tagged union: Kind selects which payload fields are meaningful.

package mesh

// EventKind discriminates the inbound event variants.
type EventKind int

const (
	// KindText is a text message, broadcast or directed.
	KindText EventKind = iota
	// KindPingReply is a reply to an earlier SendPing.
	KindPingReply
	// KindConnection is a backend connectivity status change.
	KindConnection
	// KindNodeUpdated reports a new or updated entry in the node table.
	KindNodeUpdated
)

// String returns the event kind name for logs.
func (k EventKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPingReply:
		return "ping-reply"
	case KindConnection:
		return "connection"
	case KindNodeUpdated:
		return "node-updated"
	default:
		return "unknown"
	}
}

// Event is one inbound occurrence on the mesh. From, RSSI and SNR are set on
// every radio-originated kind; the remaining fields depend on Kind.
type Event struct {
	// ID is a backend-assigned identifier for this event, used in logs.
	ID string

	Kind EventKind

	// From is the canonical id of the originating node.
	From string

	// Broadcast is true for channel-wide traffic. When false, To holds the
	// destination: either a canonical id or a decimal node number.
	Broadcast bool
	To        string

	// Channel is the mesh channel index the packet arrived on.
	Channel int

	RSSI int
	SNR  float64

	// Text is the message body for KindText.
	Text string

	// Payload is the raw reply payload for KindPingReply.
	Payload []byte

	// Status is the human-readable state change for KindConnection.
	Status string

	// Node is the updated snapshot for KindNodeUpdated.
	Node *NodeEntry
}
