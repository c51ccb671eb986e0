// ABOUTME: Configuration loading and parsing for mesh-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete mesh-gateway configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
	Weather WeatherConfig `yaml:"weather"`
	HF      HFConfig      `yaml:"hf"`
}

// ServerConfig holds the chat-side server configuration
type ServerConfig struct {
	IRCAddr        string `yaml:"irc_addr"`
	HTTPAddr       string `yaml:"http_addr"`
	ServerName     string `yaml:"server_name"`
	ControlChannel string `yaml:"control_channel"`
}

// MeshConfig holds mesh backend configuration
type MeshConfig struct {
	SerialPort     string `yaml:"serial_port"`
	TCPHost        string `yaml:"tcp_host"`
	DefaultChannel int    `yaml:"default_channel"`
	MaxMessageLen  int    `yaml:"max_message_len"`

	// NodeUpdateWindow is how long repeated node-update announcements for
	// the same node are suppressed on the control channel.
	NodeUpdateWindow    time.Duration `yaml:"-"`
	NodeUpdateWindowRaw string        `yaml:"node_update_window"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WeatherConfig holds OpenWeatherMap settings for the WEATHER command
type WeatherConfig struct {
	APIKey   string `yaml:"api_key"`
	Location string `yaml:"location"`
	Units    string `yaml:"units"`
}

// HFConfig holds the NOAA SWPC data source for the HFCONDITIONS command
type HFConfig struct {
	SourceURL string `yaml:"source_url"`
}

// Defaults applied when the file leaves a field empty.
const (
	DefaultIRCAddr          = ":6667"
	DefaultHTTPAddr         = ":8080"
	DefaultServerName       = "mesh.gw"
	DefaultControlChannel   = "#mesh-ctrl"
	DefaultMaxMessageLen    = 240
	DefaultNodeUpdateWindow = 2 * time.Minute
	DefaultHFSourceURL      = "https://services.swpc.noaa.gov/products/summary/3-day-forecast.json"
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses raw YAML config bytes, applying env expansion, defaults,
// duration parsing, and validation.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every field at its default, used when
// no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Mesh.NodeUpdateWindow = DefaultNodeUpdateWindow
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.IRCAddr == "" {
		c.Server.IRCAddr = DefaultIRCAddr
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.ServerName == "" {
		c.Server.ServerName = DefaultServerName
	}
	if c.Server.ControlChannel == "" {
		c.Server.ControlChannel = DefaultControlChannel
	}
	if c.Mesh.MaxMessageLen == 0 {
		c.Mesh.MaxMessageLen = DefaultMaxMessageLen
	}
	if c.Weather.Units == "" {
		c.Weather.Units = "metric"
	}
	if c.HF.SourceURL == "" {
		c.HF.SourceURL = DefaultHFSourceURL
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.ControlChannel, "#") {
		return fmt.Errorf("server.control_channel must start with '#', got %q", c.Server.ControlChannel)
	}

	if c.Mesh.SerialPort != "" && c.Mesh.TCPHost != "" {
		return fmt.Errorf("mesh.serial_port and mesh.tcp_host are mutually exclusive")
	}

	if c.Mesh.DefaultChannel < 0 || c.Mesh.DefaultChannel > 7 {
		return fmt.Errorf("mesh.default_channel must be in 0..7, got %d", c.Mesh.DefaultChannel)
	}

	if c.Mesh.MaxMessageLen < 1 {
		return fmt.Errorf("mesh.max_message_len must be positive, got %d", c.Mesh.MaxMessageLen)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Mesh.NodeUpdateWindowRaw == "" {
		cfg.Mesh.NodeUpdateWindow = DefaultNodeUpdateWindow
		return nil
	}

	d, err := time.ParseDuration(cfg.Mesh.NodeUpdateWindowRaw)
	if err != nil {
		return fmt.Errorf("parsing node_update_window %q: %w", cfg.Mesh.NodeUpdateWindowRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("node_update_window must be positive, got %q", cfg.Mesh.NodeUpdateWindowRaw)
	}
	cfg.Mesh.NodeUpdateWindow = d
	return nil
}
