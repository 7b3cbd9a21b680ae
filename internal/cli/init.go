package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/akiramusic/lavamon/internal/config"
	"github.com/akiramusic/lavamon/internal/errors"
)

var initForce bool

// initCmd creates a new .lavamon.yaml configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .lavamon.yaml configuration",
	Long: `Initialize a new lavamon configuration file.

Creates a .lavamon.yaml in the current directory, walking through the
node's connection details with interactive prompts.

Examples:
  lavamon init
  lavamon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config without asking")
}

func initCommand(force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	var (
		serverName = "main"
		host       string
		portStr    = "2333"
		password   string
		secure     bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node hostname").
				Description("Hostname or IP of the Lavalink node, no scheme").
				Placeholder("lava.example.com").
				Value(&host).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("hostname is required")
					}
					if strings.Contains(s, "://") {
						return fmt.Errorf("leave the scheme off; use the secure prompt instead")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Port").
				Description("Lavalink's default is 2333; tunneled nodes often use 443").
				Value(&portStr).
				Validate(func(s string) error {
					p, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || p < 1 || p > 65535 {
						return fmt.Errorf("port must be a number between 1 and 65535")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description("The node's configured password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use TLS (wss/https)?").
				Value(&secure),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Server name").
				Description("A friendly name for this node in your config").
				Value(&serverName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("server name is required")
					}
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("server name cannot contain whitespace")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility")
	}

	port, _ := strconv.Atoi(strings.TrimSpace(portStr))

	cfg := config.DefaultConfig()
	srv := config.DefaultServer()
	srv.Host = strings.TrimSpace(host)
	srv.Port = port
	srv.Password = password
	srv.Secure = secure
	cfg.Servers[serverName] = srv
	cfg.Default = serverName

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+configPath,
			"Check directory permissions")
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("Run 'lavamon' to open the dashboard.")
	return nil
}
