// ABOUTME: Represents a single chat client connection and its session state.
// ABOUTME: Serializes writes so command replies and fan-out lines never interleave mid-line.

package irc

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// writeTimeout bounds a single line write so one stalled client cannot wedge
// a fan-out.
const writeTimeout = 10 * time.Second

// Conn is one connected chat client. Session state (nick, registration, join
// state) is guarded separately from the write path so fan-out writes and
// state reads do not contend.
type Conn struct {
	netConn    net.Conn
	serverName string
	logger     *slog.Logger

	writeMu sync.Mutex

	mu         sync.RWMutex
	nick       string
	user       string
	host       string
	registered bool
	joined     bool
	closed     bool
}

// NewConn wraps an accepted network connection.
func NewConn(netConn net.Conn, serverName string, logger *slog.Logger) *Conn {
	host := "unknown"
	if addr, ok := netConn.RemoteAddr().(*net.TCPAddr); ok {
		host = addr.IP.String()
	}
	return &Conn{
		netConn:    netConn,
		serverName: serverName,
		logger:     logger,
		host:       host,
	}
}

// Nick returns the client's nickname, or "*" before one is set.
func (c *Conn) Nick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.nick == "" {
		return "*"
	}
	return c.nick
}

// Prefix returns the nick!user@host source mask for relayed messages.
func (c *Conn) Prefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	user := c.user
	if user == "" {
		user = "unknown"
	}
	return fmt.Sprintf("%s!%s@%s", c.nick, user, c.host)
}

// Registered reports whether NICK and USER have both completed.
func (c *Conn) Registered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

// Joined reports whether the client has joined the control channel.
func (c *Conn) Joined() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.joined
}

// Alive reports whether the connection is still usable.
func (c *Conn) Alive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *Conn) setNick(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nick = nick
}

func (c *Conn) setUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// tryRegister marks the session registered once both nick and user are known.
// Returns true on the transition so the caller sends the welcome burst once.
func (c *Conn) tryRegister() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registered || c.nick == "" || c.user == "" {
		return false
	}
	c.registered = true
	return true
}

func (c *Conn) setJoined(joined bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined = joined
}

// SendRaw writes one protocol line to the client. Write failures are returned
// to the caller, which decides whether to drop the connection.
func (c *Conn) SendRaw(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := c.netConn.Write([]byte(line + "\r\n"))
	return err
}

// Notice sends a server NOTICE to this client.
func (c *Conn) Notice(text string) {
	line := fmt.Sprintf(":%s NOTICE %s :%s", c.serverName, c.Nick(), text)
	if err := c.SendRaw(line); err != nil {
		c.logger.Debug("notice write failed", "nick", c.Nick(), "error", err)
	}
}

// Numeric sends a numeric reply. The final parameter is sent as trailing when
// it contains a space or is empty.
func (c *Conn) Numeric(code string, params ...string) {
	var b strings.Builder
	fmt.Fprintf(&b, ":%s %s %s", c.serverName, code, c.Nick())
	for i, p := range params {
		if i == len(params)-1 && (p == "" || strings.ContainsRune(p, ' ')) {
			b.WriteString(" :")
			b.WriteString(p)
		} else {
			b.WriteString(" ")
			b.WriteString(p)
		}
	}
	if err := c.SendRaw(b.String()); err != nil {
		c.logger.Debug("numeric write failed", "nick", c.Nick(), "code", code, "error", err)
	}
}

// Close tears down the network connection. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	_ = c.netConn.Close()
}
