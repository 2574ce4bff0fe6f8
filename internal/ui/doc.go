// Package ui provides the styled output used by pstop's non-interactive
// commands: semantic colors, status symbols, simple tables and terminal
// detection.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings
//	ColorMuted     (gray)   - Secondary text, paths
//
// ConfigureColor selects the lipgloss color profile once at startup. It
// falls back to plain ASCII for --no-color, NO_COLOR, and output that is
// not a terminal.
//
// # Tables
//
// RenderSimpleTable renders a bubbles table for CLI output:
//
//	ui.RenderSimpleTable(
//		[]ui.TableColumn{{Title: "KEY", Width: 22}, {Title: "VALUE", Width: 40}},
//		[][]string{{"update_interval_ms", "1500"}},
//	)
package ui
