// ABOUTME: Gateway orchestrator that coordinates the IRC and HTTP servers.
// ABOUTME: Wires the mesh backend, command registry, relay, and health endpoints.

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/2389/mesh-gateway/internal/commands"
	"github.com/2389/mesh-gateway/internal/config"
	"github.com/2389/mesh-gateway/internal/dedupe"
	"github.com/2389/mesh-gateway/internal/irc"
	"github.com/2389/mesh-gateway/internal/mesh"
)

// nodeUpdateCacheSize caps the relay's suppression window. A mesh rarely has
// more than a few hundred nodes.
const nodeUpdateCacheSize = 10_000

// Gateway orchestrates the mesh-gateway server components: the IRC server for
// chat clients, the HTTP server for health checks, and the mesh backend whose
// events are relayed onto the control channel.
type Gateway struct {
	config     *config.Config
	meshIface  mesh.Interface
	manager    *irc.Manager
	ircServer  *irc.Server
	httpServer *http.Server
	registry   *Registry
	logger     *slog.Logger

	// serverID identifies this gateway instance in logs
	serverID string

	// nodeUpdates suppresses repeated node-update announcements
	nodeUpdates *dedupe.Window

	startTime time.Time
}

// New creates a Gateway wired to the given mesh backend. The command set is
// registered here; the registry is read-only afterward.
func New(cfg *config.Config, meshIface mesh.Interface, logger *slog.Logger) (*Gateway, error) {
	manager := irc.NewManager(logger.With("component", "conn-manager"))

	g := &Gateway{
		config:      cfg,
		meshIface:   meshIface,
		manager:     manager,
		registry:    NewRegistry(logger.With("component", "registry")),
		logger:      logger.With("component", "gateway"),
		serverID:    "mesh-gateway-" + uuid.NewString()[:8],
		nodeUpdates: dedupe.New(cfg.Mesh.NodeUpdateWindow, nodeUpdateCacheSize),
		startTime:   time.Now(),
	}

	for _, cmd := range commands.All(cfg.Weather, cfg.HF, logger) {
		g.registry.Register(cmd)
	}

	g.ircServer = irc.NewServer(cfg.Server.ServerName, cfg.Server.ControlChannel,
		manager, g, logger.With("component", "irc"))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)
	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g, nil
}

// setupListeners binds the IRC and HTTP addresses. A bind failure here is the
// only fatal startup error.
func (g *Gateway) setupListeners() (ircLn, httpLn net.Listener, err error) {
	g.logger.Info("starting gateway",
		"server_id", g.serverID,
		"irc_addr", g.config.Server.IRCAddr,
		"http_addr", g.config.Server.HTTPAddr,
	)

	ircLn, err = net.Listen("tcp", g.config.Server.IRCAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on IRC address: %w", err)
	}

	httpLn, err = net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = ircLn.Close()
		return nil, nil, fmt.Errorf("listening on HTTP address: %w", err)
	}

	return ircLn, httpLn, nil
}

// startServers starts the IRC and HTTP servers in goroutines.
func (g *Gateway) startServers(ircLn, httpLn net.Listener) chan error {
	errCh := make(chan error, 2)

	go func() {
		g.logger.Info("IRC server listening", "addr", ircLn.Addr().String())
		if err := g.ircServer.Serve(ircLn); err != nil {
			errCh <- fmt.Errorf("IRC server: %w", err)
		}
	}()

	go func() {
		g.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := g.httpServer.Serve(httpLn); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the gateway and blocks until the context is canceled or a server
// fails. It subscribes to the mesh event stream before accepting clients so no
// early events are dropped.
func (g *Gateway) Run(ctx context.Context) error {
	ircLn, httpLn, err := g.setupListeners()
	if err != nil {
		return err
	}

	g.meshIface.Subscribe(g.handleMeshEvent)

	id := g.meshIface.OwnIdentity()
	g.logger.Info("mesh backend connected", "node_id", id.ID, "node_num", id.Num)

	errCh := g.startServers(ircLn, httpLn)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops all gateway servers and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	g.ircServer.Close()
	g.manager.CloseAll("Gateway shutting down")
	g.nodeUpdates.Close()

	if err := g.meshIface.Close(); err != nil {
		errs = append(errs, fmt.Errorf("mesh close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the mesh backend reports at least one node.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	nodes := g.meshIface.Nodes()
	if len(nodes) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no mesh nodes known"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d nodes)", len(nodes))
}

// broadcastServerMessage writes a "[GW]"-style tagged line from the server
// identity to every control-channel client.
func (g *Gateway) broadcastServerMessage(prefix, text string) {
	line := irc.ServerPrivmsg(g.config.Server.ServerName, g.config.Server.ControlChannel,
		prefix+" "+text)
	g.manager.Broadcast(line)
}
