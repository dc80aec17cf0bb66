package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/barnabasJ/ash-ai/internal/config"
	"github.com/barnabasJ/ash-ai/internal/discovery"
	"github.com/barnabasJ/ash-ai/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tools exposed by each endpoint",
	Long:  `List the tools each configured endpoint exposes, together with the instance fingerprint its configuration resolves to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ListTools(cmd.OutOrStdout(), currentConfig)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// ListTools writes the tools exposed by every configured endpoint to w.
func ListTools(w io.Writer, cfg *config.Config) error {
	rt, err := newRuntime(cfg, true)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintf(w, "Application: %s\n", cfg.Application)
	if len(rt.domains) == 0 {
		fmt.Fprintln(w, "Domains: (none)")
	} else {
		fmt.Fprint(w, "Domains:")
		for _, d := range rt.domains {
			fmt.Fprintf(w, " %s", d.Name())
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	for _, endpoint := range cfg.EffectiveEndpoints() {
		key := registry.Fingerprint(cfg.Application, endpoint.Tools)
		heading.Fprintf(w, "Endpoint %s", endpoint.Path)
		dim.Fprintf(w, " (instance %s)\n", key.Short())

		tools, err := discovery.Discover(rt.domains, endpoint.Tools)
		if err != nil {
			fmt.Fprintf(w, "  %s\n", color.RedString("error: %v", err))
			fmt.Fprintln(w)
			continue
		}
		if len(tools) == 0 {
			fmt.Fprintln(w, "  (no tools)")
		}
		for _, tool := range tools {
			fmt.Fprintf(w, "  • %s - %s\n", color.GreenString(tool.Name), tool.Description)
		}
		fmt.Fprintln(w)
	}

	return nil
}
