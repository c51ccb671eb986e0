// ABOUTME: Dispatcher: decides command vs. plain chat for each control-channel line.
// ABOUTME: Also the commands.Gateway implementation handlers execute against.

package gateway

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/shlex"

	"github.com/2389/mesh-gateway/internal/commands"
	"github.com/2389/mesh-gateway/internal/irc"
	"github.com/2389/mesh-gateway/internal/mesh"
)

// maxChatLen caps relayed plain-chat lines after sanitization.
const maxChatLen = 400

// HandlePrivmsg routes one inbound PRIVMSG. A control-channel line is either
// a registered command or plain chat relayed to the other clients, never both.
func (g *Gateway) HandlePrivmsg(conn *irc.Conn, target, text string) {
	if !irc.EqualFold(target, g.config.Server.ControlChannel) {
		if irc.EqualFold(target, g.config.Server.ServerName) {
			conn.Notice("Please send commands inside the control channel.")
			return
		}
		g.logger.Debug("ignoring privmsg outside control channel", "target", target, "nick", conn.Nick())
		return
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	keyword := strings.Fields(trimmed)[0]
	if cmd, ok := g.registry.Lookup(keyword); ok {
		rest := strings.TrimSpace(trimmed[len(keyword):])
		args, err := shlex.Split(rest)
		if err != nil {
			g.logger.Debug("argument parsing error", "nick", conn.Nick(), "input", rest, "error", err)
			conn.Notice(fmt.Sprintf("Error parsing arguments: %v", err))
			return
		}
		g.runCommand(cmd, conn, args)
		return
	}

	g.relayChat(conn, trimmed)
}

// runCommand invokes one handler. Panics and errors are confined here: each
// produces exactly one notice to the issuer and never escapes the dispatcher.
func (g *Gateway) runCommand(cmd commands.Command, conn *irc.Conn, args []string) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("command handler panicked",
				"command", cmd.Name(), "nick", conn.Nick(), "panic", r)
			conn.Notice(fmt.Sprintf("[GW ERROR] Command %s failed unexpectedly.", cmd.Name()))
		}
	}()

	g.logger.Info("executing command", "command", cmd.Name(), "nick", conn.Nick(), "args", len(args))
	rsp := &connResponder{conn: conn}
	if err := cmd.Execute(g, rsp, conn.Nick(), args); err != nil {
		g.logger.Error("command failed", "command", cmd.Name(), "nick", conn.Nick(), "error", err)
		conn.Notice(fmt.Sprintf("Error executing %s: mesh transport or internal failure.", cmd.Name()))
	}
}

// relayChat fans a plain chat line out to every other control-channel client.
func (g *Gateway) relayChat(conn *irc.Conn, text string) {
	clean := sanitizeChat(text)
	if clean == "" {
		return
	}
	line := irc.UserPrivmsg(conn.Prefix(), g.config.Server.ControlChannel, clean)
	g.manager.RelayChat(conn, line)
}

// sanitizeChat strips control characters and caps the line length.
func sanitizeChat(s string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if len(clean) > maxChatLen {
		clean = clean[:maxChatLen]
	}
	return strings.TrimSpace(clean)
}

// connResponder delivers command notices to the issuing connection.
type connResponder struct {
	conn *irc.Conn
}

func (r *connResponder) Notice(text string) {
	r.conn.Notice(text)
}

// The methods below are the commands.Gateway view handlers consume.

// Nodes returns a snapshot of the mesh node table.
func (g *Gateway) Nodes() []*mesh.NodeEntry {
	return g.meshIface.Nodes()
}

// OwnIdentity reports the gateway's own mesh addressing.
func (g *Gateway) OwnIdentity() mesh.Identity {
	return g.meshIface.OwnIdentity()
}

// SendBroadcast transmits on the configured default mesh channel.
func (g *Gateway) SendBroadcast(text string) error {
	return g.meshIface.SendBroadcast(text, g.config.Mesh.DefaultChannel)
}

// SendDirected transmits to one node, optionally requesting an ack.
func (g *Gateway) SendDirected(text, destID string, wantAck bool) error {
	return g.meshIface.SendDirected(text, destID, wantAck)
}

// SendPing queues a ping probe to one node.
func (g *Gateway) SendPing(destID string) error {
	return g.meshIface.SendPing(destID)
}

// MeshChannel is the default mesh channel index for broadcasts.
func (g *Gateway) MeshChannel() int { return g.config.Mesh.DefaultChannel }

// MaxMessageLen is the mesh transmission length cap.
func (g *Gateway) MaxMessageLen() int { return g.config.Mesh.MaxMessageLen }

// ClientCount is the number of live chat connections.
func (g *Gateway) ClientCount() int { return g.manager.Count() }

// StartTime is when this gateway instance started.
func (g *Gateway) StartTime() time.Time { return g.startTime }

// Commands lists the registered command set, sorted by keyword.
func (g *Gateway) Commands() []commands.Command { return g.registry.List() }
