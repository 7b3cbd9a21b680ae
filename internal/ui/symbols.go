package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Connected and healthy
	SymbolFail     = "✗" // Offline or failed
	SymbolPending  = "○" // Not yet connected
	SymbolProgress = "◐" // Connecting or reconnecting
	SymbolComplete = "●" // Live
	SymbolPaused   = "⊘" // Suspended
)

// Placeholder shown for metrics with no data yet.
const Placeholder = "--"
