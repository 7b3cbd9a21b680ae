package transport

import (
	"time"

	"github.com/akiramusic/lavamon/internal/lavalink"
)

// EventKind discriminates the payload of an Event.
type EventKind int

const (
	// KindState announces a lifecycle transition.
	KindState EventKind = iota
	// KindSnapshot delivers a normalized stats snapshot.
	KindSnapshot
	// KindError reports a transport failure that did not change state,
	// such as a single failed poll inside the tolerated streak.
	KindError
)

// Event is what Manager publishes to its subscribers. Exactly the fields
// matching Kind are populated.
type Event struct {
	Kind EventKind

	// KindState
	State   State
	Attempt int           // reconnection attempt the transition belongs to
	Delay   time.Duration // backoff wait before the next attempt

	// KindSnapshot
	Snapshot *lavalink.Snapshot

	// KindError, and the Err behind a state transition when there is one
	Err error
}
