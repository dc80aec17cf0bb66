package server

import (
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/barnabasJ/ash-ai/internal/bridge"
	"github.com/barnabasJ/ash-ai/internal/registry"
)

// Route mounts one server configuration at an HTTP path.
type Route struct {
	Path   string
	Config registry.Config
}

// NewHandler returns an HTTP handler serving one streamable MCP endpoint
// per route. Each new session resolves its worker through reg and binds
// the identity attached to the initializing request.
func NewHandler(reg *registry.Registry, routes []Route) http.Handler {
	mux := http.NewServeMux()
	for _, route := range routes {
		mux.Handle(route.Path, newRouteHandler(reg, route.Config))
		log.Printf("Mounted MCP endpoint %s (instance %s)", route.Path, route.Config.Key().Short())
	}
	return bridge.HeaderIdentity(mux)
}

func newRouteHandler(reg *registry.Registry, cfg registry.Config) http.Handler {
	key := cfg.Key()
	return mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		w, err := reg.EnsureRunning(req.Context(), key, cfg)
		if err != nil {
			log.Printf("Warning: failed to start server instance %s: %v", key.Short(), err)
			return nil
		}
		assigns := bridge.ToSession(bridge.PrivateFrom(req.Context()), nil)
		return NewSessionServer(w, cfg.Application, assigns)
	}, nil)
}
