package ui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalSize returns the width and height of f, or ok=false when f is
// not a terminal.
func TerminalSize(f *os.File) (width, height int, ok bool) {
	if !IsTerminal(f) {
		return 0, 0, false
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}
