package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akiramusic/lavamon/internal/errors"
	"github.com/akiramusic/lavamon/internal/logger"
	"github.com/akiramusic/lavamon/internal/transport"
	transporttest "github.com/akiramusic/lavamon/internal/transport/testing"
)

// fastBackoff keeps reconnection waits near-instant in tests.
func fastBackoff(maxAttempts int) transport.Backoff {
	return transport.Backoff{
		Base:        time.Millisecond,
		Factor:      1.5,
		Max:         10 * time.Millisecond,
		MaxAttempts: maxAttempts,
	}
}

func newManager(t *testing.T, dialer transport.Dialer, poller transport.Poller, b transport.Backoff) *transport.Manager {
	t.Helper()
	m := transport.NewManager(transport.Options{
		Dialer:           dialer,
		Poller:           poller,
		Backoff:          b,
		StatsInterval:    5 * time.Millisecond,
		PollFailureLimit: 2,
		Logger:           logger.Noop(),
	})
	t.Cleanup(m.Stop)
	return m
}

// waitState consumes events until the wanted state transition arrives.
func waitState(t *testing.T, events <-chan transport.Event, want transport.State) transport.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "events channel closed before reaching %s", want)
			if ev.Kind == transport.KindState && ev.State == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

// waitSnapshot consumes events until a snapshot arrives.
func waitSnapshot(t *testing.T, events <-chan transport.Event) transport.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "events channel closed before a snapshot arrived")
			if ev.Kind == transport.KindSnapshot {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for a snapshot")
		}
	}
}

func TestManagerGoesOfflineAfterExhaustedAttempts(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	m := newManager(t, dialer, poller, fastBackoff(3))

	m.Start(context.Background())
	events := m.Events()

	var attempts []int
	var exhausted error
	deadline := time.After(3 * time.Second)
	for done := false; !done; {
		select {
		case ev, ok := <-events:
			require.True(t, ok)
			switch {
			case ev.Kind == transport.KindState && ev.State == transport.StateReconnecting:
				attempts = append(attempts, ev.Attempt)
			case ev.Kind == transport.KindError && errors.IsCode(ev.Err, errors.ErrExhausted):
				exhausted = ev.Err
			case ev.Kind == transport.KindState && ev.State == transport.StateOffline:
				done = true
			}
		case <-deadline:
			t.Fatal("never went offline")
		}
	}

	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Error(t, exhausted)
}

func TestManagerFallsBackToPolling(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	poller.ServeStats([]byte(`{"players":3,"playingPlayers":1,"uptime":5000}`))

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())

	waitState(t, m.Events(), transport.StateLivePolling)
	ev := waitSnapshot(t, m.Events())

	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 3, ev.Snapshot.Players.Total)
	assert.EqualValues(t, 5000, ev.Snapshot.UptimeMs)
	assert.Positive(t, dialer.DialCalls())
}

func TestManagerSocketDeliversPushedStats(t *testing.T) {
	conn := transporttest.NewFakeConn()
	dialer := transporttest.NewFakeDialer()
	dialer.QueueConn(conn)
	poller := transporttest.NewFakePoller()

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())

	waitState(t, m.Events(), transport.StateLiveSocket)

	conn.QueueMessage([]byte(`{"op":"ready","sessionId":"abc","resumed":false}`))
	conn.QueueMessage([]byte(`{"op":"stats","players":2,"playingPlayers":2,"cpu":{"cores":4,"systemLoad":0.5}}`))

	ev := waitSnapshot(t, m.Events())
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 2, ev.Snapshot.Players.Total)
	assert.InDelta(t, 50.0, ev.Snapshot.CPU.SystemLoadPercent, 0.001)
}

func TestManagerSocketLatencyFromPlayerUpdates(t *testing.T) {
	conn := transporttest.NewFakeConn()
	dialer := transporttest.NewFakeDialer()
	dialer.QueueConn(conn)
	poller := transporttest.NewFakePoller()

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateLiveSocket)

	conn.QueueMessage([]byte(`{"op":"playerUpdate","guildId":"1","state":{"ping":80,"connected":true}}`))
	conn.QueueMessage([]byte(`{"op":"stats","players":1}`))

	// The ping seeds the smoother at 80; the stats frame's arrival gap
	// then blends in at 0.3 weight, so the result stays at or above 56.
	ev := waitSnapshot(t, m.Events())
	assert.GreaterOrEqual(t, ev.Snapshot.LatencyMs, int64(56))
	assert.LessOrEqual(t, ev.Snapshot.LatencyMs, int64(1000))
}

func TestManagerSocketLatencyFromMessageGaps(t *testing.T) {
	conn := transporttest.NewFakeConn()
	dialer := transporttest.NewFakeDialer()
	dialer.QueueConn(conn)
	poller := transporttest.NewFakePoller()

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateLiveSocket)

	// The first frame only establishes the arrival baseline.
	conn.QueueMessage([]byte(`{"op":"stats","players":1}`))
	first := waitSnapshot(t, m.Events())
	assert.EqualValues(t, -1, first.Snapshot.LatencyMs)

	time.Sleep(30 * time.Millisecond)
	conn.QueueMessage([]byte(`{"op":"stats","players":1}`))
	second := waitSnapshot(t, m.Events())
	assert.GreaterOrEqual(t, second.Snapshot.LatencyMs, int64(0))
	assert.LessOrEqual(t, second.Snapshot.LatencyMs, int64(1000))
}

func TestManagerSocketStaysOpenWhileHidden(t *testing.T) {
	conn := transporttest.NewFakeConn()
	dialer := transporttest.NewFakeDialer()
	dialer.QueueConn(conn)
	poller := transporttest.NewFakePoller()

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateLiveSocket)

	m.SetVisible(false)
	waitState(t, m.Events(), transport.StateSuspended)

	time.Sleep(100 * time.Millisecond)
	select {
	case <-conn.Closed:
		t.Fatal("socket was closed while hidden")
	default:
	}

	m.SetVisible(true)
	waitState(t, m.Events(), transport.StateLiveSocket)

	conn.QueueMessage([]byte(`{"op":"stats","players":5}`))
	ev := waitSnapshot(t, m.Events())
	assert.Equal(t, 5, ev.Snapshot.Players.Total)
}

func TestManagerAttemptCounterResetsAfterLive(t *testing.T) {
	conn := transporttest.NewFakeConn()
	dialer := transporttest.NewFakeDialer()
	dialer.QueueConn(conn)
	poller := transporttest.NewFakePoller()

	m := newManager(t, dialer, poller, fastBackoff(5))
	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateLiveSocket)

	// Drop the socket; with no transport available the schedule must
	// restart from attempt 1.
	conn.FailWith(errors.New(errors.ErrTransport, "socket dropped", ""))

	ev := waitState(t, m.Events(), transport.StateReconnecting)
	assert.Equal(t, 1, ev.Attempt)
	assert.Equal(t, time.Millisecond, ev.Delay)
}

func TestManagerPollFailureStreakTriggersReconnect(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	poller.ServeStats([]byte(`{"players":1}`))

	m := newManager(t, dialer, poller, fastBackoff(5))
	m.Start(context.Background())

	waitState(t, m.Events(), transport.StateLivePolling)
	waitSnapshot(t, m.Events())

	poller.SetFailing(true)

	ev := waitState(t, m.Events(), transport.StateReconnecting)
	assert.Equal(t, 1, ev.Attempt)
}

func TestManagerVisibilityResumeFromOffline(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	m := newManager(t, dialer, poller, fastBackoff(2))

	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateOffline)

	// The node comes back while the terminal is hidden.
	poller.ServeStats([]byte(`{"players":4}`))
	m.SetVisible(true)

	waitState(t, m.Events(), transport.StateConnecting)
	waitState(t, m.Events(), transport.StateLivePolling)
	ev := waitSnapshot(t, m.Events())
	assert.Equal(t, 4, ev.Snapshot.Players.Total)
}

func TestManagerRefreshFromOffline(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	m := newManager(t, dialer, poller, fastBackoff(2))

	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateOffline)

	poller.ServeStats([]byte(`{"players":1}`))
	m.Refresh()

	waitState(t, m.Events(), transport.StateLivePolling)
}

func TestManagerSuspendsWhenHidden(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	poller.ServeStats([]byte(`{"players":1}`))

	m := newManager(t, dialer, poller, fastBackoff(3))
	m.Start(context.Background())
	waitState(t, m.Events(), transport.StateLivePolling)

	m.SetVisible(false)
	waitState(t, m.Events(), transport.StateSuspended)

	m.SetVisible(true)
	waitState(t, m.Events(), transport.StateConnecting)
	waitState(t, m.Events(), transport.StateLivePolling)
}

func TestManagerStopClosesEventChannel(t *testing.T) {
	dialer := transporttest.NewFakeDialer()
	poller := transporttest.NewFakePoller()
	m := newManager(t, dialer, poller, fastBackoff(3))

	m.Start(context.Background())
	m.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-m.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed after Stop")
		}
	}
}
