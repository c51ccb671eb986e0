// ABOUTME: Command interface and the static command list assembled at startup.
// ABOUTME: Commands consume a narrow gateway view and reply through a Responder.

package commands

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/mesh-gateway/internal/config"
	"github.com/2389/mesh-gateway/internal/mesh"
)

// Gateway is the view of the gateway core that command handlers consume.
// Handlers never reach into the core's internals directly.
type Gateway interface {
	// ResolveNode maps a user-typed node specifier to a directory entry.
	// The boolean reports whether anything matched.
	ResolveNode(spec string) (*mesh.NodeEntry, bool)
	Nodes() []*mesh.NodeEntry
	OwnIdentity() mesh.Identity

	// SendBroadcast transmits on the configured default mesh channel.
	SendBroadcast(text string) error
	SendDirected(text, destID string, wantAck bool) error
	SendPing(destID string) error

	MeshChannel() int
	MaxMessageLen() int
	ClientCount() int
	StartTime() time.Time

	// Commands returns the registered command set, for HELP.
	Commands() []Command
}

// Responder delivers notices back to the issuing connection.
type Responder interface {
	Notice(text string)
}

// Command is one keyword handler. Execute returns an error only for
// unexpected faults; user-input problems are reported via the Responder
// and return nil.
type Command interface {
	Name() string
	Help() string
	Execute(gw Gateway, rsp Responder, issuer string, args []string) error
}

// All returns the full command set registered at startup.
func All(weather config.WeatherConfig, hf config.HFConfig, logger *slog.Logger) []Command {
	return []Command{
		&sendCmd{},
		&dmCmd{},
		&pingCmd{},
		&alarmCmd{},
		&nodesCmd{},
		&infoCmd{},
		&locationCmd{},
		&helpCmd{},
		&timeCmd{},
		&statsCmd{},
		&weatherCmd{
			cfg:    weather,
			client: &http.Client{Timeout: 10 * time.Second},
			logger: logger.With("command", "WEATHER"),
			apiURL: weatherAPIURL,
		},
		&hfCmd{
			url:    hf.SourceURL,
			client: &http.Client{Timeout: 15 * time.Second},
			logger: logger.With("command", "HFCONDITIONS"),
		},
	}
}
