package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmootherFirstSampleTakenDirectly(t *testing.T) {
	var s smoother
	assert.EqualValues(t, -1, s.Current())

	s.Observe(100)
	assert.EqualValues(t, 100, s.Current())
}

func TestSmootherWeighting(t *testing.T) {
	var s smoother
	s.Observe(100)

	got := s.Observe(200)
	// 0.7*100 + 0.3*200
	assert.InDelta(t, 130, got, 0.001)
	assert.EqualValues(t, 130, s.Current())
}

func TestSmootherCapsSpikes(t *testing.T) {
	var s smoother
	s.Observe(100)
	s.Observe(30000)

	// The spike enters as the 1000ms cap, not the raw value.
	assert.InDelta(t, 0.7*100+0.3*1000, float64(s.Current()), 1)
}

func TestSmootherNegativeSampleTreatedAsZero(t *testing.T) {
	var s smoother
	s.Observe(-50)
	assert.EqualValues(t, 0, s.Current())
}

func TestSmootherReset(t *testing.T) {
	var s smoother
	s.Observe(100)
	s.Reset()

	assert.EqualValues(t, -1, s.Current())
	s.Observe(40)
	assert.EqualValues(t, 40, s.Current())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "live", StateLiveSocket.String())
	assert.Equal(t, "polling", StateLivePolling.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "offline", StateOffline.String())
	assert.Equal(t, "suspended", StateSuspended.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestStateLive(t *testing.T) {
	assert.True(t, StateLiveSocket.Live())
	assert.True(t, StateLivePolling.Live())
	assert.False(t, StateConnecting.Live())
	assert.False(t, StateOffline.Live())
}
