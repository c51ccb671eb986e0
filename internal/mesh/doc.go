// Package mesh defines the boundary to the mesh radio network: node records,
// inbound events, the backend capability interface, and an in-process
// simulator used when no radio is configured.
package mesh
