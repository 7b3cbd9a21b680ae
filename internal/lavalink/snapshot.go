// Package lavalink defines the canonical status snapshot model and the
// normalizer that adapts the JSON shapes emitted by different Lavalink
// versions and community forks into it.
package lavalink

import "time"

// Snapshot is one normalized, point-in-time reading of all tracked metrics.
// A Snapshot is immutable once constructed; percentage fields carry the raw
// interpreted value and are clamped only at the rendering boundary.
type Snapshot struct {
	CapturedAt time.Time
	LatencyMs  int64 // -1 when no latency sample accompanies this cycle
	UptimeMs   int64
	CPU        CPUStats
	Memory     MemoryStats
	Players    PlayerStats
	Frames     FrameStats
	Tracks     []Track
	Caps       Capabilities
	Health     Health
	Version    string
}

// CPUStats contains CPU load information.
type CPUStats struct {
	SystemLoadPercent  float64
	ProcessLoadPercent float64
	Cores              int
}

// MemoryStats contains JVM memory usage, always denominated in bytes.
type MemoryStats struct {
	UsedBytes       int64
	FreeBytes       int64
	AllocatedBytes  int64
	ReservableBytes int64
	UsagePercent    float64
}

// PlayerStats contains audio player counts.
// Idle is derived as Total-Playing when not independently supplied.
type PlayerStats struct {
	Total   int
	Playing int
	Idle    int
}

// FrameStats contains audio frame delivery counters.
type FrameStats struct {
	Sent             int64
	Expected         int64
	Nulled           int64
	Deficit          int64
	IntegrityPercent float64
}

// Track describes one playing track as reported by the server.
// Track count and PlayerStats.Playing come from different upstream
// subsystems and are not forced to agree.
type Track struct {
	GuildID    string
	Title      string
	Author     string
	ArtworkURL string
	Source     string
	PositionMs int64
	DurationMs int64
	PingMs     int64
	Connected  bool
}

// Capabilities lists the source managers and filters the server reports.
// Effectively static per session; refreshed opportunistically on reconnect.
type Capabilities struct {
	Sources []string
	Filters []string
}

// HealthStatus is the coarse health classification of the server.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
	HealthUnknown  HealthStatus = "unknown"
)

// Health carries the upstream-supplied or derived health summary.
// Score is negative when absent.
type Health struct {
	Status HealthStatus
	Score  float64
	Grade  string
}

// DeriveHealth classifies a snapshot when the upstream payload carries no
// health block. Thresholds follow the frame-integrity and load widgets:
// integrity below 90% or load above 90% is a warning, integrity below 75%
// or load above 98% is critical. A snapshot with no signal at all stays
// unknown rather than reading as healthy.
func DeriveHealth(s *Snapshot) HealthStatus {
	if s == nil {
		return HealthUnknown
	}
	load := s.CPU.SystemLoadPercent
	integ := s.Frames.IntegrityPercent

	noSignal := load == 0 && s.CPU.ProcessLoadPercent == 0 &&
		s.Memory.UsedBytes == 0 && s.Memory.UsagePercent == 0 &&
		s.Frames.Sent == 0 && s.Frames.Expected == 0 && integ == 0
	if noSignal {
		return HealthUnknown
	}

	switch {
	case integ > 0 && integ < 75, load > 98:
		return HealthCritical
	case integ > 0 && integ < 90, load > 90, s.Memory.UsagePercent > 92:
		return HealthWarning
	default:
		return HealthHealthy
	}
}
