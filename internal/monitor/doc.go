// Package monitor implements the interactive process viewer dashboard.
//
// The dashboard is a Bubble Tea program (Model-Update-View):
//
//   - Model: the process view state, settings, active tab and input mode
//   - Update: key presses, mouse events, resizes and the refresh tick
//   - View: header meters, tab bar, table and footer rendered with lipgloss
//
// # Key Components
//
//	Model      - The Bubble Tea model holding dashboard state
//	Collector  - Samples system, process, network and GPU sources each tick
//	Snapshot   - Everything one tick produced, kept while updates are paused
//	Scheme     - A color scheme; Schemes lists them in config index order
//
// # Refresh Cycle
//
// Each tickMsg samples synchronously through the Collector, hands the new
// process records to procview.State, and schedules the next tick at the
// configured interval. While paused the Collector returns its last
// snapshot unchanged.
//
// # Tabs
//
//	Main  - the htop style process table with visible columns from settings
//	I/O   - per-process disk read and write rates
//	Net   - per-process bandwidth and connection counts
//	GPU   - per-process GPU engine usage and memory
//
// # Input Modes
//
// Normal mode handles the function keys and single letter shortcuts listed
// in keybindings.go. Search and filter read text through a bubbles
// textinput. Sort, signal, user and affinity selection are popup menus.
package monitor
