package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/akiramusic/lavamon/internal/series"
	"github.com/akiramusic/lavamon/internal/transport"
	"github.com/akiramusic/lavamon/internal/ui"
)

// graphWidth is how many history samples each card's sparkline shows.
const graphWidth = 20

// renderDashboard composes the full frame.
func (m Model) renderDashboard() string {
	v := m.controller.View()

	var b strings.Builder
	b.WriteString(m.renderHeader(v))
	b.WriteString("\n")

	// Offline drops back to placeholders; stale numbers for a dead node
	// are worse than none. Transient reconnects keep the last picture.
	if v.ConnState == transport.StateOffline ||
		(v.Snapshot == nil && !v.ConnState.Live()) {
		b.WriteString(m.renderWaiting(v))
	} else {
		b.WriteString(m.renderCards(v))
		if tracks := m.renderTracks(v); tracks != "" {
			b.WriteString(tracks)
		}
		if sources := m.renderSources(v); sources != "" {
			b.WriteString(sources)
		}
	}

	b.WriteString(m.renderFooter(v))
	return b.String()
}

func (m Model) renderHeader(v ViewState) string {
	status := m.renderStatus(v)

	parts := []string{
		TitleStyle.Render(m.serverName),
		status,
	}
	if v.Snapshot != nil && v.Snapshot.Version != "" {
		parts = append(parts, MutedStyle.Render("lavalink "+v.Snapshot.Version))
	}
	if v.ConnState.Live() {
		parts = append(parts,
			LabelStyle.Render("uptime ")+ValueStyle.Render(ui.FormatUptime(v.UptimeMs)))
	}

	return HeaderStyle.Render(strings.Join(parts, "  ")) + "\n"
}

// renderStatus renders the connection indicator for the current state.
func (m Model) renderStatus(v ViewState) string {
	switch v.ConnState {
	case transport.StateLiveSocket:
		return StatusLiveStyle.Render(ui.SymbolComplete + " live")
	case transport.StateLivePolling:
		return StatusLiveStyle.Render(ui.SymbolComplete+" live") +
			MutedStyle.Render(" (polling)")
	case transport.StateConnecting:
		return StatusConnectingStyle.Render(m.Spinner() + " connecting")
	case transport.StateReconnecting:
		detail := fmt.Sprintf(" reconnecting (attempt %d, next in %s)",
			v.Attempt, v.NextDelay.Truncate(100*time.Millisecond))
		return StatusReconnectingStyle.Render(m.Spinner() + detail)
	case transport.StateOffline:
		return StatusOfflineStyle.Render(ui.SymbolFail + " offline")
	case transport.StateSuspended:
		return MutedStyle.Render(ui.SymbolPaused + " paused")
	default:
		return MutedStyle.Render(ui.SymbolPending + " idle")
	}
}

func (m Model) renderWaiting(v ViewState) string {
	msg := "waiting for first payload"
	if v.ConnState == transport.StateOffline {
		msg = "node unreachable, press r to retry"
	}
	if v.LastError != "" {
		msg += "\n" + MutedStyle.Render(v.LastError)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(MutedStyle.Render(msg)) + "\n"
}

func (m Model) renderCards(v ViewState) string {
	snap := v.Snapshot
	if snap == nil {
		return ""
	}

	cpu := m.metricCard("CPU",
		[]cardRow{
			{"system", ui.FormatPercent(snap.CPU.SystemLoadPercent), SeverityStyle(snap.CPU.SystemLoadPercent)},
			{"process", ui.FormatPercent(snap.CPU.ProcessLoadPercent), SeverityStyle(snap.CPU.ProcessLoadPercent)},
			{"cores", fmt.Sprintf("%d", snap.CPU.Cores), ValueStyle},
		},
		ui.RenderSparkline(m.controller.Series(series.MetricCPUSystem), graphWidth))

	mem := m.metricCard("Memory",
		[]cardRow{
			{"used", ui.FormatBytes(snap.Memory.UsedBytes), ValueStyle},
			{"allocated", ui.FormatBytes(snap.Memory.AllocatedBytes), ValueStyle},
			{"usage", ui.FormatPercent(snap.Memory.UsagePercent), SeverityStyle(snap.Memory.UsagePercent)},
		},
		ui.RenderSparkline(m.controller.Series(series.MetricMemoryPercent), graphWidth))

	players := m.metricCard("Players",
		[]cardRow{
			{"total", ui.FormatCount(int64(snap.Players.Total)), ValueStyle},
			{"playing", ui.FormatCount(int64(snap.Players.Playing)), ValueStyle},
			{"idle", ui.FormatCount(int64(snap.Players.Idle)), MutedStyle},
		},
		ui.RenderFlatSparkline(m.controller.Series(series.MetricPlayerTotal), graphWidth, ColorGraph))

	integrity := snap.Frames.IntegrityPercent
	frames := m.metricCard("Frames",
		[]cardRow{
			{"integrity", ui.FormatPercent(integrity), SeverityStyle(100 - integrity)},
			{"sent", ui.FormatCount(snap.Frames.Sent), ValueStyle},
			{"deficit", ui.FormatCount(snap.Frames.Deficit), MutedStyle},
		},
		ui.RenderFlatSparkline(m.controller.Series(series.MetricIntegrity), graphWidth, ColorGraph))

	latency := m.metricCard("Latency",
		[]cardRow{
			{"smoothed", ui.FormatLatency(snap.LatencyMs), lipgloss.NewStyle().Foreground(ui.LatencyColor(snap.LatencyMs))},
			{"grade", ui.LatencyGrade(snap.LatencyMs), MutedStyle},
		},
		ui.RenderFlatSparkline(m.controller.Series(series.MetricLatency), graphWidth, ColorGraph))

	cards := []string{cpu, mem, players, frames, latency}
	return m.layoutCards(cards) + "\n"
}

type cardRow struct {
	label string
	value string
	style lipgloss.Style
}

func (m Model) metricCard(title string, rows []cardRow, graph string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%-10s", r.label)))
		b.WriteString(r.style.Render(r.value))
	}
	if graph != "" {
		b.WriteString("\n" + graph)
	}
	return CardStyle.Render(b.String())
}

// layoutCards joins cards horizontally, wrapping to rows that fit the
// terminal width.
func (m Model) layoutCards(cards []string) string {
	if m.width <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, card := range cards {
		w := lipgloss.Width(card)
		if rowWidth > 0 && rowWidth+w > m.width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
			rowWidth = 0
		}
		row = append(row, card)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderTracks lists currently playing tracks, newest payload wins.
func (m Model) renderTracks(v ViewState) string {
	snap := v.Snapshot
	if snap == nil || len(snap.Tracks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Tracks (%d)", len(snap.Tracks))))
	shown := snap.Tracks
	if max := m.trackRows(); len(shown) > max {
		shown = shown[:max]
	}
	for _, tr := range shown {
		title := tr.Title
		if title == "" {
			title = "unknown track"
		}
		line := fmt.Sprintf("  %s %s",
			ValueStyle.Render(title),
			MutedStyle.Render(fmt.Sprintf("%s · %s/%s",
				tr.Author, ui.FormatDuration(tr.PositionMs), ui.FormatDuration(tr.DurationMs))))
		b.WriteString("\n" + line)
	}
	if hidden := len(snap.Tracks) - len(shown); hidden > 0 {
		b.WriteString("\n" + MutedStyle.Render(fmt.Sprintf("  … and %d more", hidden)))
	}
	return b.String() + "\n"
}

// renderSources lists the node's enabled source managers.
func (m Model) renderSources(v ViewState) string {
	snap := v.Snapshot
	if snap == nil || len(snap.Caps.Sources) == 0 {
		return ""
	}
	return LabelStyle.Render("sources   ") +
		MutedStyle.Render(strings.Join(snap.Caps.Sources, " · ")) + "\n"
}

// trackRows bounds the track list to what the terminal height allows.
func (m Model) trackRows() int {
	if m.height <= 0 {
		return 10
	}
	rows := m.height - 16
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m Model) renderFooter(v ViewState) string {
	keys := "q quit · r refresh · p pause"
	if m.paused {
		keys = "q quit · p resume"
	}

	age := ""
	if !v.LastUpdate.IsZero() {
		age = fmt.Sprintf("   updated %ds ago", m.controller.SecondsSinceUpdate(time.Now()))
	}
	return FooterStyle.Render(keys + age)
}
