package monitor

import (
	"time"

	"github.com/akiramusic/lavamon/internal/lavalink"
	"github.com/akiramusic/lavamon/internal/series"
	"github.com/akiramusic/lavamon/internal/transport"
)

// ViewState is everything the dashboard needs to render one frame.
type ViewState struct {
	ConnState transport.State
	Attempt   int
	NextDelay time.Duration
	LastError string

	// Snapshot is the most recent normalized stats payload. It survives
	// disconnects so the last known picture stays on screen, dimmed.
	Snapshot *lavalink.Snapshot

	// UptimeMs is the reconciled server uptime: the server's reported
	// figure advanced by a local once-a-second tick between payloads.
	UptimeMs int64

	LastUpdate time.Time
}

// Controller folds transport events into the view state and the metric
// history buffers. It carries no goroutines of its own; the bubbletea
// model drives it from the update loop.
type Controller struct {
	series *series.Set
	view   ViewState

	uptimeBase int64
	uptimeSync time.Time
	hasUptime  bool
}

// NewController creates a controller whose history buffers hold capacity
// samples per metric.
func NewController(capacity int) *Controller {
	caps := make(map[series.Metric]int, len(series.AllMetrics))
	for _, m := range series.AllMetrics {
		caps[m] = capacity
	}
	return &Controller{
		series: series.NewSet(caps, 0),
		view:   ViewState{ConnState: transport.StateIdle, UptimeMs: -1},
	}
}

// Apply folds one transport event in.
func (c *Controller) Apply(ev transport.Event, now time.Time) {
	switch ev.Kind {
	case transport.KindState:
		c.applyState(ev)
	case transport.KindSnapshot:
		c.applySnapshot(ev.Snapshot, now)
	case transport.KindError:
		if ev.Err != nil {
			c.view.LastError = ev.Err.Error()
		}
	}
}

func (c *Controller) applyState(ev transport.Event) {
	c.view.ConnState = ev.State
	c.view.Attempt = ev.Attempt
	c.view.NextDelay = ev.Delay
	if ev.Err != nil {
		c.view.LastError = ev.Err.Error()
	}
	if ev.State.Live() {
		c.view.LastError = ""
	}
	if ev.State == transport.StateIdle {
		// Session over; freeze the uptime counter.
		c.hasUptime = false
	}
}

func (c *Controller) applySnapshot(snap *lavalink.Snapshot, now time.Time) {
	if snap == nil {
		return
	}
	c.view.Snapshot = snap
	c.view.LastUpdate = now

	c.uptimeBase = snap.UptimeMs
	c.uptimeSync = now
	c.hasUptime = snap.UptimeMs >= 0
	c.view.UptimeMs = snap.UptimeMs

	c.series.Push(series.MetricCPUSystem, snap.CPU.SystemLoadPercent)
	c.series.Push(series.MetricCPUProcess, snap.CPU.ProcessLoadPercent)
	c.series.Push(series.MetricMemoryPercent, snap.Memory.UsagePercent)
	c.series.Push(series.MetricIntegrity, snap.Frames.IntegrityPercent)
	c.series.Push(series.MetricPlayerTotal, float64(snap.Players.Total))
	if snap.LatencyMs >= 0 {
		c.series.Push(series.MetricLatency, float64(snap.LatencyMs))
	}
}

// Tick advances the uptime counter between payloads. The server's figure
// wins on the next snapshot, so local drift never accumulates.
func (c *Controller) Tick(now time.Time) {
	if !c.hasUptime || !c.view.ConnState.Live() {
		return
	}
	c.view.UptimeMs = c.uptimeBase + now.Sub(c.uptimeSync).Milliseconds()
}

// View returns the current view state.
func (c *Controller) View() ViewState {
	return c.view
}

// Series returns the history for one metric, oldest first.
func (c *Controller) Series(m series.Metric) []float64 {
	return c.series.Values(m)
}

// SecondsSinceUpdate returns how long ago the last snapshot arrived.
func (c *Controller) SecondsSinceUpdate(now time.Time) int {
	if c.view.LastUpdate.IsZero() {
		return 0
	}
	return int(now.Sub(c.view.LastUpdate).Seconds())
}
