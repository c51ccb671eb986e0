// ABOUTME: Minimal IRC server surface: accept loop, registration, join, and message routing.
// ABOUTME: Speaks only the subset the gateway needs; everything else gets a 421.

package irc

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// Handler receives control-channel traffic. The dispatcher behind it decides
// command versus plain chat.
type Handler interface {
	// HandlePrivmsg is called for every PRIVMSG from a registered client.
	// It runs on the connection's reader goroutine, so lines from one
	// client are handled strictly in order.
	HandlePrivmsg(conn *Conn, target, text string)
}

// Server accepts chat clients and drives their sessions. Each connection gets
// one reader goroutine; all writes go through Conn's serialized write path.
type Server struct {
	serverName     string
	controlChannel string
	manager        *Manager
	handler        Handler
	logger         *slog.Logger

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

// NewServer creates a server for the given control channel. The handler is
// invoked for every PRIVMSG from a registered client.
func NewServer(serverName, controlChannel string, manager *Manager, handler Handler, logger *slog.Logger) *Server {
	return &Server{
		serverName:     serverName,
		controlChannel: controlChannel,
		manager:        manager,
		handler:        handler,
		logger:         logger,
	}
}

// Serve runs the accept loop on the given listener until Close is called or
// the listener fails.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	for {
		netConn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		go s.handleConn(netConn)
	}
}

// Close stops the accept loop. Existing connections are torn down by the
// owner via the Manager.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

// handleConn runs one client session: read lines, mutate session state, route
// control-channel messages to the handler.
func (s *Server) handleConn(netConn net.Conn) {
	conn := NewConn(netConn, s.serverName, s.logger)
	defer func() {
		s.manager.Remove(conn)
		conn.Close()
	}()

	s.logger.Debug("client accepted", "remote", netConn.RemoteAddr().String())

	scanner := bufio.NewScanner(netConn)
	scanner.Buffer(make([]byte, 0, 512), 4096)

	for scanner.Scan() {
		msg := ParseLine(scanner.Text())
		if msg.Command == "" {
			continue
		}
		if quit := s.handleMessage(conn, msg); quit {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Debug("client read error", "nick", conn.Nick(), "error", err)
	}
}

// handleMessage processes one parsed line. Returns true when the session
// should end.
func (s *Server) handleMessage(conn *Conn, msg *Message) bool {
	switch msg.Command {
	case "CAP":
		// No capabilities offered; answer LS so capability-aware clients
		// do not stall waiting.
		if strings.EqualFold(msg.Param(0), "LS") || strings.EqualFold(msg.Param(0), "LIST") {
			_ = conn.SendRaw(fmt.Sprintf(":%s CAP * LS :", s.serverName))
		}

	case "NICK":
		if msg.Param(0) == "" {
			conn.Numeric("431", "No nickname given")
			return false
		}
		conn.setNick(msg.Param(0))
		s.maybeWelcome(conn)

	case "USER":
		if msg.Param(0) == "" {
			conn.Numeric("461", "USER", "Not enough parameters")
			return false
		}
		conn.setUser(msg.Param(0))
		s.maybeWelcome(conn)

	case "PING":
		_ = conn.SendRaw(fmt.Sprintf(":%s PONG %s :%s", s.serverName, s.serverName, msg.Param(0)))

	case "JOIN":
		if !conn.Registered() {
			conn.Numeric("451", "You have not registered")
			return false
		}
		s.handleJoin(conn, msg.Param(0))

	case "PART":
		if conn.Joined() && EqualFold(msg.Param(0), s.controlChannel) {
			conn.setJoined(false)
			_ = conn.SendRaw(fmt.Sprintf(":%s PART :%s", conn.Prefix(), s.controlChannel))
		}

	case "PRIVMSG":
		if !conn.Registered() {
			conn.Numeric("451", "You have not registered")
			return false
		}
		target, text := msg.Param(0), msg.Param(1)
		if target == "" || text == "" {
			conn.Numeric("412", "No text to send")
			return false
		}
		s.handler.HandlePrivmsg(conn, target, text)

	case "QUIT":
		return true

	default:
		conn.Numeric("421", msg.Command, "Unknown command")
	}
	return false
}

// maybeWelcome sends the registration burst exactly once, after both NICK and
// USER have arrived, and makes the connection visible to fan-out.
func (s *Server) maybeWelcome(conn *Conn) {
	if !conn.tryRegister() {
		return
	}

	s.manager.Add(conn)

	conn.Numeric("001", fmt.Sprintf("Welcome to the Mesh Gateway %s", conn.Nick()))
	conn.Numeric("002", fmt.Sprintf("Your host is %s, bridging a mesh radio network", s.serverName))
	conn.Numeric("003", "This server relays between chat clients and mesh nodes")
	conn.Numeric("004", s.serverName, "mesh-gateway", "o", "o")

	conn.Notice(fmt.Sprintf("*** Welcome to the Mesh Gateway (%s)", s.serverName))
	conn.Notice(fmt.Sprintf("*** Join %s to interact with the mesh.", s.controlChannel))
	conn.Notice("*** Type HELP in the channel for commands.")
}

// handleJoin admits the client to the control channel and rejects any other
// channel name with no state change.
func (s *Server) handleJoin(conn *Conn, channel string) {
	if channel == "" {
		conn.Numeric("461", "JOIN", "Not enough parameters")
		return
	}

	if !EqualFold(channel, s.controlChannel) {
		s.logger.Warn("join rejected", "nick", conn.Nick(), "channel", channel)
		conn.Numeric("403", channel, fmt.Sprintf("No such channel - only %s is available", s.controlChannel))
		return
	}

	conn.setJoined(true)
	_ = conn.SendRaw(fmt.Sprintf(":%s JOIN :%s", conn.Prefix(), s.controlChannel))
	conn.Numeric("332", s.controlChannel, "Mesh Gateway | Type HELP for commands")
	conn.Numeric("353", "=", s.controlChannel, strings.Join(s.manager.JoinedNicks(), " "))
	conn.Numeric("366", s.controlChannel, "End of /NAMES list")
	conn.Notice(fmt.Sprintf("*** Joined %s. Type HELP for commands or chat normally.", s.controlChannel))

	s.logger.Info("client joined control channel", "nick", conn.Nick())
}
