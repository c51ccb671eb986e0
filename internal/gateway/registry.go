// ABOUTME: Command registry: keyword to handler mapping, populated once at startup.
// ABOUTME: Re-registering a keyword overwrites the previous entry with a warning.

package gateway

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/2389/mesh-gateway/internal/commands"
)

// Registry maps uppercased command keywords to handlers. All registration
// happens during New before any dispatch runs, so lookups need no lock.
type Registry struct {
	entries map[string]commands.Command
	logger  *slog.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]commands.Command),
		logger:  logger,
	}
}

// Register stores a command under its uppercased keyword. A collision
// overwrites the previous entry, last writer wins.
func (r *Registry) Register(cmd commands.Command) {
	key := strings.ToUpper(cmd.Name())
	if _, exists := r.entries[key]; exists {
		r.logger.Warn("command already registered, overwriting", "command", key)
	}
	r.entries[key] = cmd
	r.logger.Debug("registered command", "command", key)
}

// Lookup finds the handler for a keyword, case-insensitively.
func (r *Registry) Lookup(keyword string) (commands.Command, bool) {
	cmd, ok := r.entries[strings.ToUpper(keyword)]
	return cmd, ok
}

// List returns every registered command sorted by keyword.
func (r *Registry) List() []commands.Command {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]commands.Command, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.entries[k])
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.entries)
}
