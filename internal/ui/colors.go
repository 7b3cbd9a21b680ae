package ui

import "github.com/charmbracelet/lipgloss"

// Color palette using ANSI color codes for terminal compatibility.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// ThresholdColor returns a color for a percentage-like value:
// green below 60, yellow from 60, red from 80.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// LatencyColor grades a smoothed latency sample in milliseconds.
func LatencyColor(ms int64) lipgloss.Color {
	switch {
	case ms < 0:
		return ColorMuted
	case ms < 100:
		return ColorSuccess
	case ms < 200:
		return ColorWarning
	default:
		return ColorError
	}
}
