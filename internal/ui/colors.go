package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
)

// Text colors for content hierarchy
const (
	ColorPrimary lipgloss.Color = "7" // White/default
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// SuccessStyle renders confirmations.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders failures.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
}

// WarningStyle renders warnings.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text such as paths and hints.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// DisableColors switches lipgloss to plain ASCII output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColor picks the color profile for out. Colors are disabled when
// noColor is set, NO_COLOR is present in the environment, or out is not a
// terminal.
func ConfigureColor(noColor bool, out *os.File) {
	if noColor || termenv.EnvNoColor() || !IsTerminal(out) {
		DisableColors()
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
}
