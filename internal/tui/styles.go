package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Log level styles.
var (
	levelDebugStyle   = lipgloss.NewStyle().Foreground(colorDim)
	levelInfoStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	levelWarningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	levelErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	followOnStyle     = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)
