package transport

// State identifies where a session is in its connection lifecycle.
type State int

const (
	// StateIdle is the initial state before Start is called, and the
	// terminal state after Stop.
	StateIdle State = iota

	// StateConnecting covers the first websocket attempt and the polling
	// probe that follows a websocket failure.
	StateConnecting

	// StateLiveSocket means stats arrive over the websocket push channel.
	StateLiveSocket

	// StateLivePolling means the websocket was unavailable and stats are
	// fetched over HTTP on an interval.
	StateLivePolling

	// StateReconnecting means the session lost its transport and is
	// waiting out a backoff delay before trying again.
	StateReconnecting

	// StateOffline means the reconnection budget is exhausted. Only an
	// explicit refresh or a visibility resume leaves this state.
	StateOffline

	// StateSuspended means the terminal is not visible and transport
	// activity is paused until it becomes visible again.
	StateSuspended
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateConnecting:   "connecting",
	StateLiveSocket:   "live",
	StateLivePolling:  "polling",
	StateReconnecting: "reconnecting",
	StateOffline:      "offline",
	StateSuspended:    "suspended",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Live reports whether the session currently has a working transport.
func (s State) Live() bool {
	return s == StateLiveSocket || s == StateLivePolling
}
