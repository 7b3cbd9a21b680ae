package monitor

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/logger"
	"github.com/akiramusic/lavamon/internal/transport"
	transporttest "github.com/akiramusic/lavamon/internal/transport/testing"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := transport.NewManager(transport.Options{
		Dialer: transporttest.NewFakeDialer(),
		Poller: transporttest.NewFakePoller(),
		Backoff: transport.Backoff{
			Base: time.Millisecond, Factor: 1.5, Max: 10 * time.Millisecond, MaxAttempts: 2,
		},
		Logger: logger.Noop(),
	})
	m.Start(context.Background())
	t.Cleanup(m.Stop)
	return NewModel("test-node", m, 20)
}

func TestModelQuitKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune("q")},
		"ctrl+c": {Type: tea.KeyCtrlC},
		"esc":    {Type: tea.KeyEsc},
	}
	for name, msg := range keys {
		t.Run(name, func(t *testing.T) {
			m := newTestModel(t)
			updated, cmd := m.Update(msg)
			require.NotNil(t, cmd)
			assert.Empty(t, updated.(Model).View(), "view is blank while quitting")
		})
	}
}

func TestModelWindowSize(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, updated.(Model).width)
	assert.Equal(t, 40, updated.(Model).height)
}

func TestModelAppliesTransportEvents(t *testing.T) {
	m := newTestModel(t)

	updated, cmd := m.Update(transportMsg(transport.Event{
		Kind:  transport.KindState,
		State: transport.StateLivePolling,
	}))
	require.NotNil(t, cmd, "event pump must be rearmed")
	m = updated.(Model)

	updated, _ = m.Update(transportMsg(transport.Event{
		Kind: transport.KindSnapshot,
		Snapshot: &lavalink.Snapshot{
			UptimeMs: 5000,
			Players:  lavalink.PlayerStats{Total: 7, Playing: 3, Idle: 4},
		},
	}))
	m = updated.(Model)

	view := m.View()
	assert.Contains(t, view, "test-node")
	assert.Contains(t, view, "live")
	assert.Contains(t, view, "Players")
	assert.Contains(t, view, "7")
}

func TestModelTickAdvancesUptime(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(transportMsg(transport.Event{
		Kind: transport.KindState, State: transport.StateLivePolling,
	}))
	m = updated.(Model)
	updated, _ = m.Update(transportMsg(transport.Event{
		Kind:     transport.KindSnapshot,
		Snapshot: &lavalink.Snapshot{UptimeMs: 10_000},
	}))
	m = updated.(Model)

	updated, cmd := m.Update(tickMsg(time.Now().Add(2 * time.Second)))
	m = updated.(Model)
	require.NotNil(t, cmd, "tick must reschedule itself")
	assert.GreaterOrEqual(t, m.controller.View().UptimeMs, int64(11_000))
}

func TestModelWaitingView(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(transportMsg(transport.Event{
		Kind: transport.KindState, State: transport.StateConnecting,
	}))
	view := updated.(Model).View()
	assert.Contains(t, view, "connecting")
	assert.Contains(t, view, "waiting for first payload")
}

func TestModelOfflineView(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(transportMsg(transport.Event{
		Kind: transport.KindState, State: transport.StateOffline,
	}))
	view := updated.(Model).View()
	assert.Contains(t, view, "offline")
	assert.Contains(t, view, "press r to retry")
}

func TestModelReconnectingViewShowsAttempt(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(transportMsg(transport.Event{
		Kind:    transport.KindState,
		State:   transport.StateReconnecting,
		Attempt: 2,
		Delay:   3 * time.Second,
	}))
	view := updated.(Model).View()
	assert.Contains(t, view, "attempt 2")
	assert.Contains(t, view, "3s")
}

func TestModelPauseToggle(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	assert.True(t, m.paused)
	assert.Contains(t, m.renderFooter(m.controller.View()), "resume")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.False(t, updated.(Model).paused)
}

func TestModelTracksRendered(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(transportMsg(transport.Event{
		Kind: transport.KindState, State: transport.StateLiveSocket,
	}))
	m = updated.(Model)
	updated, _ = m.Update(transportMsg(transport.Event{
		Kind: transport.KindSnapshot,
		Snapshot: &lavalink.Snapshot{
			Tracks: []lavalink.Track{
				{Title: "Song A", Author: "Artist", PositionMs: 30_000, DurationMs: 180_000},
			},
		},
	}))

	view := updated.(Model).View()
	assert.Contains(t, view, "Tracks (1)")
	assert.Contains(t, view, "Song A")
	assert.Contains(t, view, "0:30/3:00")
}
