package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/barnabasJ/ash-ai/internal/config"
	"github.com/barnabasJ/ash-ai/internal/registry"
	"github.com/barnabasJ/ash-ai/internal/types"
)

// ErrCallFailed is returned after a failed call's envelope was printed.
var ErrCallFailed = errors.New("tool call failed")

var callArgs string

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call one tool and print its result",
	Long:  `Call one tool through the same dispatcher the MCP server uses. A successful call prints the tool's text payload; a failed call prints the JSON-RPC error envelope.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return CallTool(cmd.Context(), cmd.OutOrStdout(), currentConfig, args[0], callArgs)
	},
}

func init() {
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "tool arguments as a JSON object")
	callCmd.Flags().String("actor", "", "actor id for the call")
	callCmd.Flags().String("tenant", "", "tenant for the call")
	rootCmd.AddCommand(callCmd)
}

// CallTool dispatches one call against the default tool set and writes the
// payload, or the error envelope, to w.
func CallTool(ctx context.Context, w io.Writer, cfg *config.Config, name, arguments string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}

	reg := registry.New(registry.WithQuietMode())
	defer reg.Stop()

	rc := rt.registryConfig(cfg.Tools, true)
	worker, err := reg.EnsureRunning(ctx, rc.Key(), rc)
	if err != nil {
		return fmt.Errorf("failed to start server instance: %w", err)
	}

	p := rt.private()
	ec := types.ExecutionContext{Actor: p.Actor, Tenant: p.Tenant}
	outcome := worker.Dispatcher().Call(ctx, name, json.RawMessage(arguments), ec)
	if outcome.Succeeded() {
		fmt.Fprintln(w, outcome.Payload())
		return nil
	}

	envelope, err := json.MarshalIndent(outcome.Envelope().Wire(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode error: %w", err)
	}
	fmt.Fprintln(w, string(envelope))
	return ErrCallFailed
}
