// Package config loads and validates the mesh-gateway YAML configuration.
//
// # File Format
//
// The config file is YAML with ${VAR} environment variable expansion:
//
//	server:
//	  irc_addr: ":6667"
//	  http_addr: ":8080"
//	  server_name: "mesh.gw"
//	  control_channel: "#mesh-ctrl"
//	mesh:
//	  default_channel: 0
//	  max_message_len: 240
//	  node_update_window: "2m"
//	logging:
//	  level: info
//	  format: text
//	weather:
//	  api_key: ${WEATHER_API_KEY}
//	  location: "Port Colborne,CA"
//	  units: metric
//
// Every field has a sensible default; an empty file is a valid config.
package config
