package monitor

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorBorder = lipgloss.Color("#2A2A4A")

	// Semantic colors for metrics
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	// Accent colors
	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Status indicator styles
	StatusLiveStyle         = lipgloss.NewStyle().Foreground(ColorHealthy)
	StatusConnectingStyle   = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	StatusReconnectingStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusOfflineStyle      = lipgloss.NewStyle().Foreground(ColorCritical)
)

// SeverityStyle returns the style for a percentage-like metric value.
func SeverityStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= CriticalThreshold:
		return lipgloss.NewStyle().Foreground(ColorCritical)
	case percent >= WarningThreshold:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	}
}

// ConnectingSpinnerFrames are the animation frames for the connecting state.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}
