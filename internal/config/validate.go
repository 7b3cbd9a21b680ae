package config

import (
	"fmt"
	"strings"

	"github.com/akiramusic/lavamon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but lavamon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest lavamon release.")
	}

	for name, srv := range cfg.Servers {
		if err := validateServer(name, srv); err != nil {
			return err
		}
	}

	if cfg.Default != "" {
		if _, ok := cfg.Servers[cfg.Default]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Default server '%s' is not defined in the servers section", cfg.Default),
				"Add it under 'servers:' or change the 'default:' entry.")
		}
	}

	if err := validateTransport(cfg.Transport); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'transport' section in your .lavamon.yaml.")
	}

	if err := validateBackoff(cfg.Backoff); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'backoff' section in your .lavamon.yaml.")
	}

	if cfg.History.Capacity < 0 {
		return errors.New(errors.ErrConfig,
			"History capacity cannot be negative",
			"Use a positive sample count, or omit it for the default of 20.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'output' section in your .lavamon.yaml.")
	}

	return nil
}

func validateServer(name string, srv Server) error {
	if srv.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' has no host", name),
			"Add a 'host:' entry with the node's hostname or IP.")
	}
	if strings.Contains(srv.Host, "://") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' host '%s' includes a scheme", name, srv.Host),
			"Use just the hostname. Set 'secure: true' for wss/https.")
	}
	if srv.Port < 0 || srv.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' port %d is out of range", name, srv.Port),
			"Use a port between 1 and 65535. Lavalink's default is 2333.")
	}
	switch srv.CPULoad {
	case "", "fraction", "percent":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' cpu_load '%s' is not recognized", name, srv.CPULoad),
			"Use 'fraction' (Lavalink's 0..1 loads) or 'percent'.")
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	if t.StatsInterval < 0 {
		return fmt.Errorf("stats_interval cannot be negative")
	}
	if t.PollFailureLimit < 1 {
		return fmt.Errorf("poll_failure_limit must be at least 1")
	}
	return nil
}

func validateBackoff(b BackoffConfig) error {
	if b.Base <= 0 {
		return fmt.Errorf("backoff base must be positive")
	}
	if b.Factor < 1 {
		return fmt.Errorf("backoff factor must be at least 1")
	}
	if b.Max < b.Base {
		return fmt.Errorf("backoff max cannot be below the base delay")
	}
	if b.MaxAttempts < 1 {
		return fmt.Errorf("backoff max_attempts must be at least 1")
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	switch o.Color {
	case "", "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("output color must be 'auto', 'always', or 'never'")
}
