package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akiramusic/lavamon/internal/config"
	"github.com/akiramusic/lavamon/internal/errors"
)

// Global flags
var (
	configFlag string
	serverFlag string
)

// rootCmd is the base command. Running lavamon with no subcommand opens
// the dashboard, the thing the tool exists for.
var rootCmd = &cobra.Command{
	Use:   "lavamon",
	Short: "Terminal dashboard for Lavalink nodes",
	Long: `lavamon is a terminal dashboard for Lavalink audio nodes.

It connects to a node's v4 websocket for pushed stats, falls back to
HTTP polling when the websocket is unavailable, and keeps reconnecting
with backoff when the node drops.

Examples:
  lavamon                  Open the dashboard for the default server
  lavamon --server eu-1    Open the dashboard for a named server
  lavamon status           One-shot stats summary
  lavamon init             Create a .lavamon.yaml config`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(serverFlag, 0)
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "server name from config")
}

// loadConfig finds, loads, and validates the config file.
func loadConfig() (*config.Config, error) {
	path, err := config.Find(configFlag)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'lavamon init' to create one, or specify one with --config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveServer picks the server entry to use: the --server flag, the
// config's default, or the only entry when there is exactly one.
func resolveServer(cfg *config.Config, name string) (string, config.Server, error) {
	if name != "" {
		srv, ok := cfg.Servers[name]
		if !ok {
			return "", config.Server{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("Server '%s' is not in the config", name),
				"Check the 'servers' section of your .lavamon.yaml")
		}
		return name, srv, nil
	}

	if cfg.Default != "" {
		return cfg.Default, cfg.Servers[cfg.Default], nil
	}

	if len(cfg.Servers) == 1 {
		for n, srv := range cfg.Servers {
			return n, srv, nil
		}
	}

	return "", config.Server{}, errors.New(errors.ErrConfig,
		"No server selected",
		"Pass --server, or set 'default:' in your .lavamon.yaml")
}
