package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .lavamon.yaml configuration file.
type Config struct {
	Version   int               `yaml:"version" mapstructure:"version"`
	Servers   map[string]Server `yaml:"servers" mapstructure:"servers"`
	Default   string            `yaml:"default" mapstructure:"default"`
	Transport TransportConfig   `yaml:"transport" mapstructure:"transport"`
	Backoff   BackoffConfig     `yaml:"backoff" mapstructure:"backoff"`
	History   HistoryConfig     `yaml:"history" mapstructure:"history"`
	Output    OutputConfig      `yaml:"output" mapstructure:"output"`
}

// Server defines a Lavalink node and its connection settings.
type Server struct {
	// Host is the hostname or IP of the Lavalink node.
	Host string `yaml:"host" mapstructure:"host"`

	// Port the node listens on. Lavalink's default is 2333.
	Port int `yaml:"port" mapstructure:"port"`

	// Password sent in the Authorization header.
	Password string `yaml:"password" mapstructure:"password"`

	// Secure selects wss:// and https:// instead of ws:// and http://.
	Secure bool `yaml:"secure" mapstructure:"secure"`

	// UserID identifies this client on the websocket handshake.
	// Lavalink requires one; any numeric snowflake works for monitoring.
	UserID string `yaml:"user_id" mapstructure:"user_id"`

	// ClientName sent on the websocket handshake.
	ClientName string `yaml:"client_name" mapstructure:"client_name"`

	// Headers are extra headers sent on every request, for example
	// bypass-tunnel-reminder when the node sits behind a dev tunnel.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// CPULoad selects how the node reports CPU load figures:
	// "fraction" (0..1, scaled by 100) or "percent" (already scaled).
	CPULoad string `yaml:"cpu_load" mapstructure:"cpu_load"`
}

// TransportConfig controls polling cadence and request limits.
type TransportConfig struct {
	// StatsInterval is how often stats are fetched in polling mode.
	StatsInterval time.Duration `yaml:"stats_interval" mapstructure:"stats_interval"`

	// HandshakeTimeout bounds the websocket upgrade.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" mapstructure:"handshake_timeout"`

	// RequestTimeout bounds each HTTP request in polling mode.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`

	// PollFailureLimit is how many consecutive poll failures are tolerated
	// before the session drops back into reconnection.
	PollFailureLimit int `yaml:"poll_failure_limit" mapstructure:"poll_failure_limit"`
}

// BackoffConfig controls the reconnection schedule.
type BackoffConfig struct {
	// Base is the delay before the first reconnection attempt.
	Base time.Duration `yaml:"base" mapstructure:"base"`

	// Factor multiplies the delay on each subsequent attempt.
	Factor float64 `yaml:"factor" mapstructure:"factor"`

	// Max caps the per-attempt delay.
	Max time.Duration `yaml:"max" mapstructure:"max"`

	// MaxAttempts is how many attempts are made before going offline.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// HistoryConfig controls the metric history buffers behind the graphs.
type HistoryConfig struct {
	// Capacity is the number of samples each metric series retains.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Servers: make(map[string]Server),
		Transport: TransportConfig{
			StatsInterval:    10 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			RequestTimeout:   8 * time.Second,
			PollFailureLimit: 3,
		},
		Backoff: BackoffConfig{
			Base:        2 * time.Second,
			Factor:      1.5,
			Max:         30 * time.Second,
			MaxAttempts: 10,
		},
		History: HistoryConfig{
			Capacity: 20,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// DefaultServer returns a Server with the fields a fresh entry starts from.
func DefaultServer() Server {
	return Server{
		Port:       2333,
		UserID:     "1",
		ClientName: "lavamon/1.0",
		CPULoad:    "fraction",
	}
}
