package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/akiramusic/lavamon/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".lavamon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/lavamon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'lavamon init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .lavamon.yaml in current directory
// 3. .lavamon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/lavamon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// Walk up to parent directories
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}
	}

	// Global config
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not
// found. Useful for commands like 'lavamon init' that work without one.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	// Per-server defaults that mapstructure cannot express.
	for name, srv := range cfg.Servers {
		if srv.Port == 0 {
			srv.Port = 2333
		}
		if srv.UserID == "" {
			srv.UserID = DefaultServer().UserID
		}
		if srv.ClientName == "" {
			srv.ClientName = DefaultServer().ClientName
		}
		if srv.CPULoad == "" {
			srv.CPULoad = "fraction"
		}
		cfg.Servers[name] = srv
	}

	return cfg, nil
}

// setDefaults configures viper defaults so absent keys unmarshal to the
// documented values rather than zero values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("transport.stats_interval", "10s")
	v.SetDefault("transport.handshake_timeout", "10s")
	v.SetDefault("transport.request_timeout", "8s")
	v.SetDefault("transport.poll_failure_limit", 3)
	v.SetDefault("backoff.base", "2s")
	v.SetDefault("backoff.factor", 1.5)
	v.SetDefault("backoff.max", "30s")
	v.SetDefault("backoff.max_attempts", 10)
	v.SetDefault("history.capacity", 20)
	v.SetDefault("output.color", "auto")
}
