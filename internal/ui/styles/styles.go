// Package styles centralizes the color palette and shared lipgloss styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Adaptive pairs keep the board readable on light terminals.
var (
	HighlightColor = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	SubtleColor    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	ErrorColor     = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F56"}
	SuccessColor   = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#73F59F"}
	WarningColor   = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#F5D273"}
	SpinnerColor   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}

	StatusTodoColor       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#8A8A8A"}
	StatusInProgressColor = lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#54A0FF"}
	StatusDoneColor       = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#73F59F"}
)

// Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#353533"})

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(ErrorColor)

	SelectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)
	DimStyle         = lipgloss.NewStyle().Foreground(SubtleColor)

	FieldLabelStyle        = lipgloss.NewStyle().Bold(true)
	FieldLabelFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)

	// Save indicator styles, one per autosave state.
	IndicatorUnsavedStyle = lipgloss.NewStyle().Foreground(WarningColor)
	IndicatorSavingStyle  = lipgloss.NewStyle().Foreground(StatusInProgressColor)
	IndicatorSavedStyle   = lipgloss.NewStyle().Foreground(SuccessColor)
	IndicatorFailedStyle  = lipgloss.NewStyle().Bold(true).Foreground(ErrorColor)
)

// HasDarkBackground reports the terminal background, used by callers that
// pick raw ANSI colors outside the adaptive pairs.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}
