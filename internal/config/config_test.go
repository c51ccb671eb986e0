// ABOUTME: Tests for configuration loading and validation.
// ABOUTME: Covers env expansion, defaults, duration parsing, and validation failures.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
server:
  irc_addr: ":7000"
  http_addr: ":7001"
  server_name: "test.gw"
  control_channel: "#test-ctrl"
mesh:
  default_channel: 2
  max_message_len: 200
  node_update_window: "30s"
logging:
  level: debug
  format: json
weather:
  api_key: "abc123"
  location: "Toronto,CA"
  units: imperial
hf:
  source_url: "https://example.com/forecast.json"
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.IRCAddr)
	assert.Equal(t, ":7001", cfg.Server.HTTPAddr)
	assert.Equal(t, "test.gw", cfg.Server.ServerName)
	assert.Equal(t, "#test-ctrl", cfg.Server.ControlChannel)
	assert.Equal(t, 2, cfg.Mesh.DefaultChannel)
	assert.Equal(t, 200, cfg.Mesh.MaxMessageLen)
	assert.Equal(t, 30*time.Second, cfg.Mesh.NodeUpdateWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "abc123", cfg.Weather.APIKey)
	assert.Equal(t, "imperial", cfg.Weather.Units)
	assert.Equal(t, "https://example.com/forecast.json", cfg.HF.SourceURL)
}

func TestParse_EmptyConfigGetsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, DefaultIRCAddr, cfg.Server.IRCAddr)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultServerName, cfg.Server.ServerName)
	assert.Equal(t, DefaultControlChannel, cfg.Server.ControlChannel)
	assert.Equal(t, DefaultMaxMessageLen, cfg.Mesh.MaxMessageLen)
	assert.Equal(t, DefaultNodeUpdateWindow, cfg.Mesh.NodeUpdateWindow)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, DefaultHFSourceURL, cfg.HF.SourceURL)
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_MESH_GW_KEY", "secret-key")

	cfg, err := Parse([]byte("weather:\n  api_key: ${TEST_MESH_GW_KEY}\n"))
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.Weather.APIKey)
}

func TestParse_EnvExpansion_UnsetVarIsEmpty(t *testing.T) {
	cfg, err := Parse([]byte("weather:\n  api_key: \"${DEFINITELY_NOT_SET_VAR_42}\"\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Weather.APIKey)
}

func TestParse_BadDuration(t *testing.T) {
	_, err := Parse([]byte("mesh:\n  node_update_window: \"soon\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_update_window")
}

func TestParse_NegativeDuration(t *testing.T) {
	_, err := Parse([]byte("mesh:\n  node_update_window: \"-5s\"\n"))
	require.Error(t, err)
}

func TestValidate_ControlChannelMustBeChannel(t *testing.T) {
	_, err := Parse([]byte("server:\n  control_channel: \"mesh-ctrl\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control_channel")
}

func TestValidate_SerialAndTCPExclusive(t *testing.T) {
	_, err := Parse([]byte("mesh:\n  serial_port: \"/dev/ttyUSB0\"\n  tcp_host: \"10.0.0.5\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_ChannelIndexRange(t *testing.T) {
	_, err := Parse([]byte("mesh:\n  default_channel: 9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_channel")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/gateway.yaml")
	require.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  irc_addr: \":6669\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6669", cfg.Server.IRCAddr)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultControlChannel, cfg.Server.ControlChannel)
	assert.Equal(t, DefaultNodeUpdateWindow, cfg.Mesh.NodeUpdateWindow)
}
