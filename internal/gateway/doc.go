// Package gateway is the bridge's core: it owns the IRC server, the command
// registry and dispatcher, the node resolver, and the mesh event relay.
//
// # Control Flow
//
// A chat line arriving on a connection flows through HandlePrivmsg: lines
// outside the control channel are ignored (or answered with a hint when sent
// to the server's own name); inside it, the first word is matched against the
// registry. A match parses the remainder with shell-style quoting and runs
// the handler; anything else is sanitized and relayed verbatim to the other
// clients. A line is either a command or chat, never both, never silently
// dropped.
//
// Independently, the mesh backend pushes events into handleMeshEvent, which
// reformats them into control-channel lines. Both paths write through the
// connection manager and may run concurrently.
//
// # Failure Containment
//
// Handler panics and errors are caught in runCommand and produce exactly one
// notice to the issuer. Relay failures for a single event are caught in
// handleMeshEvent and surface as a "[GW ERROR]" line; the stream continues.
// Nothing in this package is fatal to the process after startup; only the
// listener binds in Run can abort it.
package gateway
