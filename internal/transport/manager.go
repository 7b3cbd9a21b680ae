package transport

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/akiramusic/lavamon/internal/errors"
	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/logger"
)

// Options configures a Manager. Zero durations and counts fall back to
// the documented defaults.
type Options struct {
	Dialer           Dialer
	Poller           Poller
	Normalizer       *lavalink.Normalizer
	Backoff          Backoff
	StatsInterval    time.Duration
	PollFailureLimit int
	Logger           logger.Logger
}

// Manager owns one monitoring session against a Lavalink node. It prefers
// the websocket push channel, falls back to HTTP polling, reconnects with
// geometric backoff, and goes offline once the attempt budget is spent.
// All lifecycle activity happens on a single goroutine; the public methods
// post control messages to it.
type Manager struct {
	dialer    Dialer
	poller    Poller
	norm      *lavalink.Normalizer
	backoff   Backoff
	interval  time.Duration
	failLimit int
	log       logger.Logger
	events    chan Event
	ctrl      chan ctrlMsg
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	latency   smoother
	attempt   int
	state     State
	liveConn  Conn
	metaCaps  lavalink.Capabilities
	metaVer   string
	hasMeta   bool
}

type ctrlKind int

const (
	ctrlVisibility ctrlKind = iota
	ctrlRefresh
)

type ctrlMsg struct {
	kind    ctrlKind
	visible bool
}

// NewManager builds a Manager from Options.
func NewManager(opts Options) *Manager {
	if opts.Backoff.Base <= 0 {
		opts.Backoff = DefaultBackoff()
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 10 * time.Second
	}
	if opts.PollFailureLimit < 1 {
		opts.PollFailureLimit = 3
	}
	if opts.Normalizer == nil {
		opts.Normalizer = lavalink.NewNormalizer(lavalink.CPUFraction)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	return &Manager{
		dialer:    opts.Dialer,
		poller:    opts.Poller,
		norm:      opts.Normalizer,
		backoff:   opts.Backoff,
		interval:  opts.StatsInterval,
		failLimit: opts.PollFailureLimit,
		log:       opts.Logger,
		events:    make(chan Event, 64),
		ctrl:      make(chan ctrlMsg, 8),
		done:      make(chan struct{}),
		state:     StateIdle,
	}
}

// Events returns the channel transitions and snapshots are published on.
// It is closed after Stop, once the session goroutine has wound down.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Start launches the session. A second call is a no-op for a running
// manager; a stopped manager cannot be restarted.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(m.events)
		m.run(ctx)
	}()
}

// Stop ends the session from any state and releases its transport.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}

// SetVisible informs the session about terminal visibility. Hidden
// suspends transport activity; visible resumes it with a fresh attempt
// budget, including from offline.
func (m *Manager) SetVisible(visible bool) {
	m.post(ctrlMsg{kind: ctrlVisibility, visible: visible})
}

// Refresh forces an immediate fetch, and from offline restarts the
// connection cycle with a fresh attempt budget.
func (m *Manager) Refresh() {
	m.post(ctrlMsg{kind: ctrlRefresh})
}

func (m *Manager) post(msg ctrlMsg) {
	select {
	case m.ctrl <- msg:
	case <-m.done:
	}
}

// run drives the state machine until Stop or context cancellation.
func (m *Manager) run(ctx context.Context) {
	next := StateConnecting
	for {
		select {
		case <-ctx.Done():
			m.transition(StateIdle, nil)
			return
		case <-m.done:
			m.transition(StateIdle, nil)
			return
		default:
		}

		m.transition(next, nil)

		switch next {
		case StateConnecting:
			next = m.connect(ctx)
		case StateLiveSocket:
			next = m.serveSocket(ctx)
		case StateLivePolling:
			next = m.servePolling(ctx)
		case StateReconnecting:
			next = m.waitBackoff(ctx)
		case StateOffline:
			next = m.waitOffline(ctx)
		case StateSuspended:
			next = m.waitVisible(ctx)
		default:
			return
		}

		if next == StateIdle {
			m.transition(StateIdle, nil)
			return
		}
	}
}

// connect tries the websocket first and probes the HTTP surface when the
// upgrade fails. Only when both transports are unreachable does the
// attempt count toward the backoff budget.
func (m *Manager) connect(ctx context.Context) State {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, err := m.dialer.Dial(dialCtx)
	if err == nil {
		m.liveConn = conn
		m.onLive(ctx)
		return StateLiveSocket
	}
	m.log.Debug("websocket dial failed, probing http: %v", err)

	_, perr := m.poller.FetchVersion(dialCtx)
	if perr == nil {
		m.onLive(ctx)
		return StateLivePolling
	}
	m.log.Debug("http probe failed: %v", perr)

	return m.failure(err)
}

// onLive resets the attempt budget and caches node metadata so snapshots
// from the stats stream can carry version and capabilities.
func (m *Manager) onLive(ctx context.Context) {
	m.attempt = 0
	m.latency.Reset()

	infoCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if body, err := m.poller.FetchInfo(infoCtx); err == nil {
		if snap, nerr := m.norm.Normalize(body); nerr == nil {
			m.metaCaps = snap.Caps
			m.metaVer = snap.Version
			m.hasMeta = true
		}
	}
}

// failure advances the attempt counter and picks reconnecting or offline.
func (m *Manager) failure(err error) State {
	m.attempt++
	if m.backoff.Exhausted(m.attempt) {
		m.emit(Event{
			Kind: KindError,
			Err:  errors.NewExhausted(m.backoff.MaxAttempts),
		})
		return StateOffline
	}
	if err != nil {
		m.emit(Event{Kind: KindError, Err: err})
	}
	return StateReconnecting
}

type readResult struct {
	data []byte
	err  error
}

func (m *Manager) serveSocket(ctx context.Context) State {
	conn := m.liveConn
	m.liveConn = nil
	defer conn.Close()

	reads := make(chan readResult, 1)
	readerDone := make(chan struct{})
	defer close(readerDone)

	go func() {
		for {
			data, err := conn.ReadMessage()
			select {
			case reads <- readResult{data: data, err: err}:
			case <-readerDone:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	// Hidden keeps the established socket open and only pauses emission
	// and latency tracking; polling mode drops to Suspended instead.
	var lastMsg time.Time
	suspended := false

	for {
		select {
		case <-ctx.Done():
			return StateIdle
		case <-m.done:
			return StateIdle
		case msg := <-m.ctrl:
			if msg.kind != ctrlVisibility {
				// Refresh is a no-op on a push channel.
				continue
			}
			switch {
			case !msg.visible && !suspended:
				suspended = true
				lastMsg = time.Time{}
				m.transition(StateSuspended, nil)
			case msg.visible && suspended:
				suspended = false
				m.transition(StateLiveSocket, nil)
			}
		case r := <-reads:
			if r.err != nil {
				m.log.Debug("websocket read error: %v", r.err)
				if suspended {
					// The socket died while hidden; reconnect on resume.
					return StateSuspended
				}
				return m.failure(r.err)
			}
			if suspended {
				continue
			}
			now := time.Now()
			if !lastMsg.IsZero() {
				m.latency.Observe(float64(now.Sub(lastMsg).Milliseconds()))
			}
			lastMsg = now
			m.routeMessage(r.data)
		}
	}
}

// routeMessage dispatches one websocket message by its op field.
func (m *Manager) routeMessage(data []byte) {
	op := gjson.GetBytes(data, "op").String()
	switch op {
	case "stats":
		m.publishStats(data)
	case "ready":
		m.log.Debug("session ready: id=%s resumed=%v",
			gjson.GetBytes(data, "sessionId").String(),
			gjson.GetBytes(data, "resumed").Bool())
	case "playerUpdate":
		if ping := gjson.GetBytes(data, "state.ping"); ping.Exists() && ping.Int() >= 0 {
			m.latency.Observe(float64(ping.Int()))
		}
	case "event":
		m.log.Debug("player event: %s on guild %s",
			gjson.GetBytes(data, "type").String(),
			gjson.GetBytes(data, "guildId").String())
	default:
		m.log.Debug("unhandled op %q", op)
	}
}

func (m *Manager) servePolling(ctx context.Context) State {
	streak := 0
	// First fetch immediately so the dashboard is not blank for a full
	// interval after connecting.
	if next, ok := m.pollOnce(ctx, &streak); !ok {
		return next
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return StateIdle
		case <-m.done:
			return StateIdle
		case msg := <-m.ctrl:
			switch {
			case msg.kind == ctrlVisibility && !msg.visible:
				return StateSuspended
			case msg.kind == ctrlRefresh:
				if next, ok := m.pollOnce(ctx, &streak); !ok {
					return next
				}
			}
		case <-ticker.C:
			if next, ok := m.pollOnce(ctx, &streak); !ok {
				return next
			}
		}
	}
}

// pollOnce runs one fetch cycle. ok=false means leave polling for the
// returned state.
func (m *Manager) pollOnce(ctx context.Context, streak *int) (State, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	body, rtt, err := m.poller.FetchStats(fetchCtx)
	if err != nil {
		*streak++
		m.log.Debug("poll failed (%d/%d): %v", *streak, m.failLimit, err)
		if *streak >= m.failLimit {
			return m.failure(err), false
		}
		m.emit(Event{Kind: KindError, Err: err})
		return 0, true
	}

	*streak = 0
	m.latency.Observe(float64(rtt.Milliseconds()))
	m.publishStats(body)
	return 0, true
}

// publishStats normalizes a raw payload and emits it with the session's
// smoothed latency and cached node metadata folded in.
func (m *Manager) publishStats(raw []byte) {
	snap, err := m.norm.Normalize(raw)
	if err != nil {
		m.log.Warn("discarding stats payload: %v", err)
		m.emit(Event{Kind: KindError, Err: err})
		return
	}

	snap.LatencyMs = m.latency.Current()
	if m.hasMeta {
		if len(snap.Caps.Sources) == 0 {
			snap.Caps = m.metaCaps
		}
		if snap.Version == "" {
			snap.Version = m.metaVer
		}
	}

	m.emit(Event{Kind: KindSnapshot, Snapshot: snap})
}

// waitBackoff sits out the delay before the next attempt. Visibility
// changes and stop interrupt the wait.
func (m *Manager) waitBackoff(ctx context.Context) State {
	delay := m.backoff.Delay(m.attempt)
	m.emit(Event{
		Kind:    KindState,
		State:   StateReconnecting,
		Attempt: m.attempt,
		Delay:   delay,
	})

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return StateIdle
		case <-m.done:
			return StateIdle
		case msg := <-m.ctrl:
			switch {
			case msg.kind == ctrlVisibility && !msg.visible:
				return StateSuspended
			case msg.kind == ctrlRefresh:
				return StateConnecting
			}
		case <-timer.C:
			return StateConnecting
		}
	}
}

// offlineRecheckInterval is how often an offline session probes whether
// the node came back on its own.
const offlineRecheckInterval = 30 * time.Second

// waitOffline blocks until a refresh, a visibility resume, or a
// successful availability probe restarts the cycle with a fresh
// attempt budget.
func (m *Manager) waitOffline(ctx context.Context) State {
	ticker := time.NewTicker(offlineRecheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return StateIdle
		case <-m.done:
			return StateIdle
		case msg := <-m.ctrl:
			switch {
			case msg.kind == ctrlRefresh,
				msg.kind == ctrlVisibility && msg.visible:
				m.attempt = 0
				return StateConnecting
			}
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_, err := m.poller.FetchVersion(probeCtx)
			cancel()
			if err == nil {
				m.attempt = 0
				return StateConnecting
			}
			m.log.Debug("offline probe failed: %v", err)
		}
	}
}

// waitVisible blocks while the terminal is hidden.
func (m *Manager) waitVisible(ctx context.Context) State {
	for {
		select {
		case <-ctx.Done():
			return StateIdle
		case <-m.done:
			return StateIdle
		case msg := <-m.ctrl:
			if msg.kind == ctrlVisibility && msg.visible {
				m.attempt = 0
				return StateConnecting
			}
		}
	}
}

// transition records a state change and announces it. Re-entering the
// same state is silent; reconnecting announces itself from waitBackoff
// where the attempt and delay are known.
func (m *Manager) transition(to State, err error) {
	if m.state == to || to == StateReconnecting {
		m.state = to
		return
	}
	m.state = to
	m.emit(Event{Kind: KindState, State: to, Attempt: m.attempt, Err: err})
}

// emit publishes without blocking the session goroutine. A full channel
// drops the event; the UI only ever needs the latest picture.
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.log.Debug("event channel full, dropping %d", ev.Kind)
	}
}
