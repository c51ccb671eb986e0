// Package commands holds the gateway's chat command set.
//
// Commands are plain values implementing the Command interface, assembled
// into a static list by All at process start; there is no runtime discovery.
// Each command sees the gateway core only through the narrow Gateway view
// and replies to its issuer through a Responder.
//
// # Command Set
//
// Mesh transmission:
//
//   - SEND: broadcast a message on the default mesh channel
//   - DM: direct message to one node, requesting a delivery ack
//   - PING: ping probe to one node
//   - ALARM: prefixed broadcast for urgent traffic
//
// Node directory:
//
//   - NODES: list known nodes, most recently heard first
//   - INFO: per-field detail for one node
//   - LOCATION: the gateway node's own GPS fix with a map link
//
// Gateway introspection:
//
//   - HELP, TIME, STATS
//
// External data:
//
//   - WEATHER: OpenWeatherMap current conditions (needs an API key)
//   - HFCONDITIONS: NOAA SWPC solar/HF propagation summary
//
// Execute returns an error only for unexpected faults (for example a mesh
// transport rejection); the dispatcher logs those and notices the issuer.
// Bad user input is reported directly via the Responder and returns nil.
package commands
