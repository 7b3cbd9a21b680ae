package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/transport"
	"github.com/akiramusic/lavamon/internal/ui"
)

// statusCmd prints a one-shot stats summary without the TUI.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "One-shot stats summary for a Lavalink node",
	Long: `Fetch the node's stats once over HTTP and print a summary.

Useful for scripts and quick checks where the full dashboard is overkill.

Examples:
  lavamon status
  lavamon status --server eu-1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(serverFlag)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(serverName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name, srv, err := resolveServer(cfg, serverName)
	if err != nil {
		return err
	}

	ui.ConfigureColor(cfg.Output.Color)

	poller := transport.NewPoller(srv, cfg.Transport.RequestTimeout)
	norm := lavalink.NewNormalizer(lavalink.CPUInterpretation(srv.CPULoad))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Transport.RequestTimeout+time.Second)
	defer cancel()

	body, rtt, err := poller.FetchStats(ctx)
	if err != nil {
		return err
	}
	snap, err := norm.Normalize(body)
	if err != nil {
		return err
	}

	printStatus(name, snap, rtt)
	return nil
}

func printStatus(name string, snap *lavalink.Snapshot, rtt time.Duration) {
	fmt.Printf("%s %s\n", ui.SymbolSuccess, name)
	fmt.Printf("  uptime     %s\n", ui.FormatUptime(snap.UptimeMs))
	fmt.Printf("  latency    %dms (%s)\n", rtt.Milliseconds(), ui.LatencyGrade(rtt.Milliseconds()))
	fmt.Printf("  players    %d total, %d playing, %d idle\n",
		snap.Players.Total, snap.Players.Playing, snap.Players.Idle)
	fmt.Printf("  cpu        %s system, %s process (%d cores)\n",
		ui.FormatPercent(snap.CPU.SystemLoadPercent),
		ui.FormatPercent(snap.CPU.ProcessLoadPercent),
		snap.CPU.Cores)
	fmt.Printf("  memory     %s used of %s (%s)\n",
		ui.FormatBytes(snap.Memory.UsedBytes),
		ui.FormatBytes(snap.Memory.AllocatedBytes),
		ui.FormatPercent(snap.Memory.UsagePercent))
	if snap.Frames.Expected > 0 || snap.Frames.IntegrityPercent > 0 {
		fmt.Printf("  frames     %s integrity (%s sent, %s deficit)\n",
			ui.FormatPercent(snap.Frames.IntegrityPercent),
			ui.FormatCount(snap.Frames.Sent),
			ui.FormatCount(snap.Frames.Deficit))
	}
	fmt.Printf("  health     %s\n", snap.Health.Status)
}
