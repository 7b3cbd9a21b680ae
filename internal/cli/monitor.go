package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/akiramusic/lavamon/internal/config"
	"github.com/akiramusic/lavamon/internal/errors"
	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/monitor"
	"github.com/akiramusic/lavamon/internal/transport"
	"github.com/akiramusic/lavamon/internal/ui"
)

var monitorIntervalFlag string

// monitorCmd starts the TUI dashboard. Identical to running lavamon with
// no subcommand, kept as an explicit command for discoverability.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Real-time dashboard for a Lavalink node",
	Long: `Start an interactive dashboard showing live stats for a Lavalink node.

Displays CPU, memory, player counts, frame integrity, and latency with
history graphs. Prefers the node's websocket push channel and falls back
to HTTP polling.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force refresh / retry from offline
  p           Pause (suspends the connection until resumed)

Examples:
  lavamon monitor
  lavamon monitor --server eu-1
  lavamon monitor --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var interval time.Duration
		if monitorIntervalFlag != "" {
			parsed, err := time.ParseDuration(monitorIntervalFlag)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Invalid interval: %s", monitorIntervalFlag),
					"Use a valid duration like 2s, 5s, or 1m")
			}
			if parsed < 500*time.Millisecond {
				return errors.New(errors.ErrConfig,
					"Interval too short",
					"Minimum interval is 500ms to avoid hammering the node")
			}
			interval = parsed
		}

		return monitorCommand(serverFlag, interval)
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "polling interval when the websocket is unavailable (e.g. 5s)")
}

// monitorCommand wires the transport session to the dashboard and runs it.
func monitorCommand(serverName string, interval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, srv, err := resolveServer(cfg, serverName)
	if err != nil {
		return err
	}

	if interval == 0 {
		interval = cfg.Transport.StatsInterval
	}

	ui.ConfigureColor(cfg.Output.Color)

	mgr := newManager(cfg, srv, interval)
	mgr.Start(context.Background())
	defer mgr.Stop()

	model := monitor.NewModel(name, mgr, cfg.History.Capacity)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// newManager builds a transport manager for one configured server.
func newManager(cfg *config.Config, srv config.Server, interval time.Duration) *transport.Manager {
	return transport.NewManager(transport.Options{
		Dialer:     transport.NewDialer(srv, cfg.Transport.HandshakeTimeout),
		Poller:     transport.NewPoller(srv, cfg.Transport.RequestTimeout),
		Normalizer: lavalink.NewNormalizer(lavalink.CPUInterpretation(srv.CPULoad)),
		Backoff: transport.Backoff{
			Base:        cfg.Backoff.Base,
			Factor:      cfg.Backoff.Factor,
			Max:         cfg.Backoff.Max,
			MaxAttempts: cfg.Backoff.MaxAttempts,
		},
		StatsInterval:    interval,
		PollFailureLimit: cfg.Transport.PollFailureLimit,
	})
}
