package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rileyhilliard/pstop/internal/errors"
)

const fileHeader = "# pstop configuration file\n# Auto-generated — do not edit while pstop is running\n\n"

// Render encodes settings in pstoprc format. Keys are always written in the
// same order.
func Render(s Settings) string {
	b := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}

	cols := make([]string, 0, len(s.VisibleColumns))
	for _, c := range s.VisibleColumns {
		if c >= 0 && c < ColumnCount {
			cols = append(cols, strconv.Itoa(c))
		}
	}
	sortField := s.SortField
	if sortField < 0 || sortField >= ColumnCount {
		sortField = 0
	}

	var out strings.Builder
	out.WriteString(fileHeader)
	lines := []struct{ key, value string }{
		{"tree_view", b(s.TreeView)},
		{"show_tree_by_default", b(s.ShowTreeByDefault)},
		{"hide_kernel_threads", b(s.HideKernelThreads)},
		{"shadow_other_users", b(s.ShadowOtherUsers)},
		{"highlight_base_name", b(s.HighlightBaseName)},
		{"show_full_path", b(s.ShowFullPath)},
		{"show_merged_command", b(s.ShowMergedCommand)},
		{"highlight_megabytes", b(s.HighlightMegabytes)},
		{"highlight_threads", b(s.HighlightThreads)},
		{"header_margin", b(s.HeaderMargin)},
		{"detailed_cpu_time", b(s.DetailedCPUTime)},
		{"cpu_count_from_zero", b(s.CPUCountFromZero)},
		{"update_process_names", b(s.UpdateProcessNames)},
		{"show_thread_names", b(s.ShowThreadNames)},
		{"enable_mouse", b(s.EnableMouse)},
		{"update_interval_ms", strconv.Itoa(s.UpdateIntervalMS)},
		{"color_scheme", strconv.Itoa(s.ColorScheme)},
		{"sort_field", strconv.Itoa(sortField)},
		{"sort_ascending", b(s.SortAscending)},
		{"visible_columns", strings.Join(cols, ",")},
	}
	for _, l := range lines {
		fmt.Fprintf(&out, "%s=%s\n", l.key, l.value)
	}
	return out.String()
}

// Save writes settings to path, creating the parent directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config directory "+filepath.Dir(path),
			"Check the directory permissions")
	}
	if err := os.WriteFile(path, []byte(Render(s)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write settings file "+path,
			"Check the file permissions")
	}
	return nil
}

// Reset overwrites path with the default settings.
func Reset(path string) error {
	return Save(path, DefaultSettings())
}
