// ABOUTME: Commands that originate mesh transmissions: SEND, DM, PING, ALARM.
// ABOUTME: Length checks happen before any transport call; acks arrive via the relay.

package commands

import (
	"fmt"
	"strings"
)

// alarmReserve keeps room for the "ALARM: " prefix within the mesh length cap.
const alarmReserve = 10

const alarmPrefix = "ALARM: "

type sendCmd struct{}

func (c *sendCmd) Name() string { return "SEND" }
func (c *sendCmd) Help() string { return "SEND <message> - Sends message to default mesh channel" }

func (c *sendCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if len(args) == 0 {
		rsp.Notice("Usage: " + c.Help())
		return nil
	}

	text := strings.Join(args, " ")
	if max := gw.MaxMessageLen(); len(text) > max {
		rsp.Notice(fmt.Sprintf("Error: Message too long (%d chars). Maximum is %d characters.", len(text), max))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		rsp.Notice("Error: Message cannot be empty.")
		return nil
	}

	ch := gw.MeshChannel()
	rsp.Notice(fmt.Sprintf("Sending '%s' to mesh channel %d...", text, ch))
	if err := gw.SendBroadcast(text); err != nil {
		return fmt.Errorf("broadcast to channel %d: %w", ch, err)
	}
	rsp.Notice(fmt.Sprintf("Message sent to mesh channel %d.", ch))
	return nil
}

type alarmCmd struct{}

func (c *alarmCmd) Name() string { return "ALARM" }
func (c *alarmCmd) Help() string {
	return "ALARM <message> - Broadcasts an ALARM message to the default mesh channel"
}

func (c *alarmCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if len(args) == 0 {
		rsp.Notice("Usage: " + c.Help())
		return nil
	}

	text := strings.Join(args, " ")
	if max := gw.MaxMessageLen() - alarmReserve; len(text) > max {
		rsp.Notice(fmt.Sprintf("Error: Alarm message too long (%d chars). Maximum is %d characters.", len(text), max))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		rsp.Notice("Error: Alarm message cannot be empty.")
		return nil
	}

	ch := gw.MeshChannel()
	rsp.Notice(fmt.Sprintf("Broadcasting Alarm to mesh channel %d: '%s'...", ch, text))
	if err := gw.SendBroadcast(alarmPrefix + text); err != nil {
		return fmt.Errorf("alarm broadcast to channel %d: %w", ch, err)
	}
	rsp.Notice(fmt.Sprintf("Alarm message sent to mesh channel %d.", ch))
	return nil
}

type dmCmd struct{}

func (c *dmCmd) Name() string { return "DM" }
func (c *dmCmd) Help() string {
	return "DM <node_id|shortname|nodenum> <message> - Sends direct message to a node"
}

func (c *dmCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if len(args) < 2 {
		rsp.Notice("Usage: " + c.Help())
		return nil
	}

	spec := args[0]
	text := strings.Join(args[1:], " ")

	if max := gw.MaxMessageLen(); len(text) > max {
		rsp.Notice(fmt.Sprintf("Error: Message too long (%d chars). Maximum is %d characters.", len(text), max))
		return nil
	}

	node, ok := gw.ResolveNode(spec)
	if !ok {
		rsp.Notice(fmt.Sprintf("Error: Could not find node matching '%s'. Use NODES command.", spec))
		return nil
	}

	rsp.Notice(fmt.Sprintf("Sending DM '%s' to %s (NodeNum: %d)...", text, spec, node.Num))
	if err := gw.SendDirected(text, node.ID, true); err != nil {
		return fmt.Errorf("directed send to %s: %w", node.ID, err)
	}
	// The ACK/NAK, if any, is rendered by the event relay when it arrives.
	rsp.Notice(fmt.Sprintf("DM request sent to %s. Waiting for ACK/NAK...", spec))
	return nil
}

type pingCmd struct{}

func (c *pingCmd) Name() string { return "PING" }
func (c *pingCmd) Help() string {
	return "PING <node_id|shortname|nodenum> - Sends a mesh ping request to a node"
}

func (c *pingCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if len(args) == 0 {
		rsp.Notice("Usage: " + c.Help())
		return nil
	}

	spec := args[0]
	node, ok := gw.ResolveNode(spec)
	if !ok {
		rsp.Notice(fmt.Sprintf("Error: Could not find node matching '%s'.", spec))
		return nil
	}

	rsp.Notice(fmt.Sprintf("Sending mesh Ping to %s (%s)...", spec, node.ID))
	if err := gw.SendPing(node.ID); err != nil {
		return fmt.Errorf("ping to %s: %w", node.ID, err)
	}
	rsp.Notice(fmt.Sprintf("Ping request sent to %s. Waiting for reply (PONG)...", spec))
	return nil
}
