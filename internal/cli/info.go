package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/transport"
	"github.com/akiramusic/lavamon/internal/ui"
)

// infoCmd prints the node's version and capability catalog.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a node's version, sources, and filters",
	Long: `Fetch the node's /v4/info endpoint and print its version, enabled
source managers, and available filters.

Examples:
  lavamon info
  lavamon info --server eu-1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return infoCommand(serverFlag)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoCommand(serverName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name, srv, err := resolveServer(cfg, serverName)
	if err != nil {
		return err
	}

	poller := transport.NewPoller(srv, cfg.Transport.RequestTimeout)
	norm := lavalink.NewNormalizer(lavalink.CPUInterpretation(srv.CPULoad))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Transport.RequestTimeout)
	defer cancel()

	body, err := poller.FetchInfo(ctx)
	if err != nil {
		return err
	}
	snap, err := norm.Normalize(body)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", ui.SymbolSuccess, name)
	version := snap.Version
	if version == "" {
		if v, verr := poller.FetchVersion(ctx); verr == nil {
			version = v
		}
	}
	if version != "" {
		fmt.Printf("  version  %s\n", version)
	}
	printCatalog("sources", snap.Caps.Sources)
	printCatalog("filters", snap.Caps.Filters)
	return nil
}

func printCatalog(label string, items []string) {
	if len(items) == 0 {
		fmt.Printf("  %-8s %s\n", label, ui.Placeholder)
		return
	}
	fmt.Printf("  %-8s %s\n", label, strings.Join(items, ", "))
}
