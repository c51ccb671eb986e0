// Package irc implements the minimal chat-protocol surface the gateway
// exposes to clients: connect, register, join the single control channel,
// send and receive channel messages, and quit.
//
// # Scope
//
// This is deliberately not a general IRC server. Only one channel exists,
// nick collision handling is absent, and unknown commands get a 421. The
// subset is exactly what interactive clients need to drive the gateway.
//
// # Concurrency
//
// Each connection has one reader goroutine, so two lines from the same
// client are never handled concurrently. Writes to a connection are
// serialized by a per-connection mutex. The Manager's connection set is
// guarded by an RWMutex and is safe to fan out from any goroutine,
// including the mesh event relay's.
package irc
