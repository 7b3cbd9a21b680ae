package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in IEC units ("512 MiB"). Zero renders
// as the placeholder since the stats payload uses zero for "not reported".
func FormatBytes(n int64) string {
	if n <= 0 {
		return Placeholder
	}
	return humanize.IBytes(uint64(n))
}

// FormatPercent renders a percentage with one decimal place, clamped to
// 100. The snapshot keeps the raw value; only the display is bounded.
func FormatPercent(v float64) string {
	if v < 0 {
		return Placeholder
	}
	if v > 100 {
		v = 100
	}
	return fmt.Sprintf("%.1f%%", v)
}

// FormatUptime renders a millisecond uptime as dd:hh:mm:ss.
func FormatUptime(ms int64) string {
	if ms < 0 {
		return Placeholder
	}
	total := ms / 1000
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", days, hours, minutes, seconds)
}

// FormatLatency renders a smoothed latency sample, -1 meaning no sample.
func FormatLatency(ms int64) string {
	if ms < 0 {
		return Placeholder
	}
	return fmt.Sprintf("%dms", ms)
}

// LatencyGrade classifies a latency sample the way the status header
// labels it.
func LatencyGrade(ms int64) string {
	switch {
	case ms < 0:
		return "unknown"
	case ms < 50:
		return "excellent"
	case ms < 100:
		return "good"
	case ms < 200:
		return "fair"
	default:
		return "poor"
	}
}

// FormatDuration renders a track position or length as m:ss or h:mm:ss.
func FormatDuration(ms int64) string {
	if ms < 0 {
		return Placeholder
	}
	d := time.Duration(ms) * time.Millisecond
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
