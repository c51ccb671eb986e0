// ABOUTME: IRC line parsing, formatting, and rfc1459 case folding.
// ABOUTME: Covers only the message shapes the gateway speaks, not the full grammar.

package irc

import (
	"fmt"
	"strings"
)

// Message is one parsed client line. Params holds the middle parameters with
// any trailing parameter appended as the final element.
type Message struct {
	Command string
	Params  []string
}

// Param returns the i'th parameter or "" if absent.
func (m *Message) Param(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

// ParseLine parses a raw IRC line from a client. A leading prefix, if any, is
// discarded: the gateway never trusts client-supplied prefixes.
func ParseLine(raw string) *Message {
	line := strings.TrimRight(raw, "\r\n")

	// Drop client prefix
	if strings.HasPrefix(line, ":") {
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			line = line[idx+1:]
		} else {
			return &Message{}
		}
	}

	var trailing string
	hasTrailing := false
	if idx := strings.Index(line, " :"); idx >= 0 {
		trailing = line[idx+2:]
		line = line[:idx]
		hasTrailing = true
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		if hasTrailing {
			return &Message{Params: []string{trailing}}
		}
		return &Message{}
	}

	msg := &Message{
		Command: strings.ToUpper(fields[0]),
		Params:  fields[1:],
	}
	if hasTrailing {
		msg.Params = append(msg.Params, trailing)
	}
	return msg
}

// CaseFold lowercases a nickname or channel name using rfc1459 rules, where
// []\~ are the uppercase forms of {}|^.
func CaseFold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c == '[':
			c = '{'
		case c == ']':
			c = '}'
		case c == '\\':
			c = '|'
		case c == '~':
			c = '^'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// EqualFold reports whether two names are equal under rfc1459 case folding.
func EqualFold(a, b string) bool {
	return CaseFold(a) == CaseFold(b)
}

// ServerPrivmsg formats a PRIVMSG originating from the server itself.
func ServerPrivmsg(serverName, target, text string) string {
	return fmt.Sprintf(":%s!%s@%s PRIVMSG %s :%s", serverName, serverName, serverName, target, text)
}

// UserPrivmsg formats a PRIVMSG relayed on behalf of a client.
func UserPrivmsg(prefix, target, text string) string {
	return fmt.Sprintf(":%s PRIVMSG %s :%s", prefix, target, text)
}
