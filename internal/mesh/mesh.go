// ABOUTME: Mesh radio backend boundary: node records, identity, and the send/subscribe surface.
// ABOUTME: The gateway core only ever sees this interface, never a concrete radio driver.

package mesh

import (
	"errors"
	"time"
)

// ErrUnknownNode indicates a send was addressed to a node the backend has never heard.
var ErrUnknownNode = errors.New("unknown mesh node")

// ErrSendFailed indicates the backend rejected a transmission.
var ErrSendFailed = errors.New("mesh send failed")

// Identity is the gateway's own addressing information on the mesh.
type Identity struct {
	ID  string // canonical node id, e.g. "!a1b2c3d4"
	Num uint32 // numeric node id
}

// Position is a node's last reported GPS fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Altitude  int // meters
	Time      time.Time
}

// DeviceMetrics carries the telemetry a node last reported about itself.
type DeviceMetrics struct {
	BatteryLevel  int // percent
	Voltage       float64
	AirUtilTx     float64 // percent
	UptimeSeconds int64
}

// NodeEntry is a snapshot of one entry in the backend's node table.
// Snapshots are copies: mutating one never affects the backend's state,
// and two successive reads may disagree.
type NodeEntry struct {
	ID        string // canonical id, unique
	Num       uint32 // numeric id, unique
	ShortName string
	LongName  string
	LastHeard time.Time
	SNR       float64
	RSSI      int
	Position  *Position      // nil if the node never reported a fix
	Metrics   *DeviceMetrics // nil if no telemetry seen
}

// DisplayName returns the friendliest available name for the node.
func (n *NodeEntry) DisplayName() string {
	if n.ShortName != "" {
		return n.ShortName
	}
	if n.LongName != "" {
		return n.LongName
	}
	return n.ID
}

// Interface is the capability surface a mesh backend exposes to the gateway.
//
// Sends are fire-and-forget: a nil return means the transmission was queued,
// not that it was delivered. Delivery acknowledgments, ping replies, and all
// other inbound traffic arrive asynchronously through the Subscribe callback,
// possibly on a goroutine of the backend's choosing.
type Interface interface {
	// SendBroadcast queues a text message on the given mesh channel.
	SendBroadcast(text string, channel int) error

	// SendDirected queues a text message to one node. When wantAck is set
	// the backend requests a delivery acknowledgment; if one ever arrives
	// it is reported as an event, never as a return value.
	SendDirected(text, destID string, wantAck bool) error

	// SendPing queues a ping probe to one node. The reply, if any, arrives
	// later as a KindPingReply event.
	SendPing(destID string) error

	// OwnIdentity reports the backend's own node addressing.
	OwnIdentity() Identity

	// Nodes returns a point-in-time copy of the known-node table.
	Nodes() []*NodeEntry

	// Subscribe registers the single inbound-event callback. The backend
	// may invoke it from any goroutine; the callback must not block for long.
	Subscribe(fn func(*Event))

	// Close shuts the backend down and stops event delivery.
	Close() error
}
