// Package server exposes registry workers over the MCP stdio and
// streamable HTTP transports.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/barnabasJ/ash-ai/internal/bridge"
	"github.com/barnabasJ/ash-ai/internal/registry"
	"github.com/barnabasJ/ash-ai/internal/tools"
)

// Version is reported to clients during initialization.
const Version = "0.1.0"

// NewSessionServer builds an MCP server for one session, exposing the
// worker's tool set with the session's identity in assigns. A worker whose
// tool set fails to load still gets a server; its calls report the failure.
func NewSessionServer(w *registry.Worker, application string, assigns bridge.Assigns) *mcp.Server {
	name := "ash-ai"
	if application != "" {
		name = "ash-ai-" + application
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: Version,
	}, tools.ServerOptions())
	tools.Register(server, w.Dispatcher(), assigns)
	return server
}

// RunStdio serves a single session over stdin/stdout until the client
// disconnects or ctx is cancelled.
func RunStdio(ctx context.Context, reg *registry.Registry, cfg registry.Config, private *bridge.Private) error {
	w, err := reg.EnsureRunning(ctx, cfg.Key(), cfg)
	if err != nil {
		return fmt.Errorf("failed to start server instance: %w", err)
	}
	server := NewSessionServer(w, cfg.Application, bridge.ToSession(private, nil))

	log.Printf("Starting MCP server for %q on stdio (instance %s)...", cfg.Application, w.Key().Short())
	return server.Run(ctx, &mcp.StdioTransport{})
}
