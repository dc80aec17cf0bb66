package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/barnabasJ/ash-ai/internal/config"
	"github.com/barnabasJ/ash-ai/internal/registry"
	"github.com/barnabasJ/ash-ai/internal/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured tools over MCP",
	Long:  `Serve the configured domain actions as MCP tools. Without --http the server speaks MCP over stdin/stdout; with --http each configured endpoint is mounted as a streamable HTTP handler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, currentConfig)
	},
}

func init() {
	serveCmd.Flags().String("http", "", "listen address for streamable HTTP (default stdio)")
	serveCmd.Flags().String("actor", "", "actor id for stdio sessions")
	serveCmd.Flags().String("tenant", "", "tenant for stdio sessions")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}

	reg := registry.New()
	defer reg.Stop()

	if cfg.HTTP.Addr == "" {
		return server.RunStdio(ctx, reg, rt.registryConfig(cfg.Tools, false), rt.private())
	}

	endpoints := cfg.EffectiveEndpoints()
	routes := make([]server.Route, 0, len(endpoints))
	for _, endpoint := range endpoints {
		routes = append(routes, server.Route{
			Path:   endpoint.Path,
			Config: rt.registryConfig(endpoint.Tools, false),
		})
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.NewHandler(reg, routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server for %q on http://%s (%d endpoints)...", cfg.Application, cfg.HTTP.Addr, len(routes))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Printf("Shutting down MCP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
