// Package cmd implements the ash-ai command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/barnabasJ/ash-ai/internal/bridge"
	"github.com/barnabasJ/ash-ai/internal/config"
	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/persistence"
	"github.com/barnabasJ/ash-ai/internal/registry"
	"github.com/barnabasJ/ash-ai/internal/script"
)

var (
	cfgFile       string
	currentConfig *config.Config
)

// flagKeys maps config keys to the command flags that override them.
var flagKeys = map[string]string{
	"http.addr": "http",
	"actor":     "actor",
	"tenant":    "tenant",
}

var rootCmd = &cobra.Command{
	Use:           "ash-ai",
	Short:         "ash-ai - expose domain actions as MCP tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := make(map[string]*pflag.Flag, len(flagKeys))
		for key, name := range flagKeys {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				flags[key] = flag
			}
		}

		cfg, err := config.LoadConfig(cfgFile, flags)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		currentConfig = cfg
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default <base>/config.yaml)")
}

// runtime holds what every command builds from the loaded configuration.
type runtime struct {
	cfg     *config.Config
	domains []host.Domain
	invoker *script.Invoker
}

func newRuntime(cfg *config.Config, quiet bool) (*runtime, error) {
	store, err := persistence.NewStore(cfg.DomainsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open domain store: %w", err)
	}
	domains, err := script.LoadAll(store, cfg.Domains)
	if err != nil {
		return nil, fmt.Errorf("failed to load domains: %w", err)
	}

	var opts []script.InvokerOption
	if quiet {
		opts = append(opts, script.WithQuietMode())
	}
	return &runtime{
		cfg:     cfg,
		domains: domains,
		invoker: script.NewInvoker(script.NewMemoryStore(), opts...),
	}, nil
}

// registryConfig returns the instance configuration for one allow-list.
func (rt *runtime) registryConfig(tools []string, quiet bool) registry.Config {
	return registry.Config{
		Application:       rt.cfg.Application,
		Domains:           rt.domains,
		Tools:             tools,
		Invoker:           rt.invoker,
		ValidateArguments: rt.cfg.ValidateArguments,
		Quiet:             quiet,
	}
}

// private returns the identity configured for local sessions.
func (rt *runtime) private() *bridge.Private {
	p := &bridge.Private{Tenant: rt.cfg.Tenant}
	if rt.cfg.Actor != "" {
		p.Actor = map[string]any{"id": rt.cfg.Actor}
	}
	return p
}
