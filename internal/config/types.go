// Package config handles pstop's persisted display settings and its runtime
// options.
//
// Display settings live in a flat key=value file (pstoprc) in the user
// config directory. Runtime options come from command-line flags and
// PSTOP_* environment variables and are never written back.
package config

import (
	"slices"
	"time"
)

// Interval bounds and default for update_interval_ms.
const (
	MinIntervalMS     = 200
	MaxIntervalMS     = 10000
	DefaultIntervalMS = 1500
)

// ColumnCount is the number of process table columns. Column indices are
// 0 (PID) through ColumnCount-1 (Command).
const ColumnCount = 17

// DefaultSortField is the CPU% column index.
const DefaultSortField = 9

// SchemeCount is the number of built-in color schemes.
const SchemeCount = 7

// Settings is the content of pstoprc.
type Settings struct {
	TreeView           bool
	ShowTreeByDefault  bool
	HideKernelThreads  bool
	ShadowOtherUsers   bool
	HighlightBaseName  bool
	ShowFullPath       bool
	ShowMergedCommand  bool
	HighlightMegabytes bool
	HighlightThreads   bool
	HeaderMargin       bool
	DetailedCPUTime    bool
	CPUCountFromZero   bool
	UpdateProcessNames bool
	ShowThreadNames    bool
	EnableMouse        bool

	UpdateIntervalMS int
	ColorScheme      int
	SortField        int
	SortAscending    bool
	VisibleColumns   []int
}

// DefaultSettings returns the settings used when pstoprc is missing.
func DefaultSettings() Settings {
	cols := make([]int, ColumnCount)
	for i := range cols {
		cols[i] = i
	}
	return Settings{
		HighlightBaseName:  true,
		HighlightMegabytes: true,
		HighlightThreads:   true,
		HeaderMargin:       true,
		EnableMouse:        true,
		UpdateIntervalMS:   DefaultIntervalMS,
		SortField:          DefaultSortField,
		VisibleColumns:     cols,
	}
}

// Interval returns the refresh interval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(clampInterval(s.UpdateIntervalMS)) * time.Millisecond
}

// ColumnVisible reports whether column index i is shown.
func (s Settings) ColumnVisible(i int) bool {
	for _, c := range s.VisibleColumns {
		if c == i {
			return true
		}
	}
	return false
}

// SetColumnVisible shows or hides column i. VisibleColumns stays sorted and
// is never shared with the receiver's previous value.
func (s *Settings) SetColumnVisible(i int, visible bool) {
	if i < 0 || i >= ColumnCount || s.ColumnVisible(i) == visible {
		return
	}
	cols := slices.Clone(s.VisibleColumns)
	if visible {
		cols = append(cols, i)
		slices.Sort(cols)
	} else {
		cols = slices.DeleteFunc(cols, func(c int) bool { return c == i })
	}
	s.VisibleColumns = cols
}

func clampInterval(ms int) int {
	return min(max(ms, MinIntervalMS), MaxIntervalMS)
}
