package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/pstop/internal/errors"
)

const (
	// AppDir is the directory under the user config dir.
	AppDir = "pstop"
	// FileName is the settings file name.
	FileName = "pstoprc"
)

// Path returns the default settings file location:
// $XDG_CONFIG_HOME/pstop/pstoprc on Unix, %APPDATA%\pstop\pstoprc on Windows.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine the user config directory",
			"Set XDG_CONFIG_HOME (or APPDATA on Windows), or pass --config")
	}
	return filepath.Join(dir, AppDir, FileName), nil
}

// Load reads settings from path. A missing file yields defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read settings file "+path,
			"Check the file permissions, or run 'pstop config reset'")
	}
	return Parse(string(data)), nil
}

// Parse decodes pstoprc content. Blank lines, comments, lines without '='
// and unknown keys are ignored; missing or malformed values keep their
// defaults.
func Parse(content string) Settings {
	s := DefaultSettings()

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		kv, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}
		for key, value := range kv {
			s.set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
	return s
}

func (s *Settings) set(key, value string) {
	if p := s.boolField(key); p != nil {
		*p = value == "1"
		return
	}

	switch key {
	case "update_interval_ms":
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			s.UpdateIntervalMS = int(min(max(v, MinIntervalMS), MaxIntervalMS))
		}
	case "color_scheme":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			if v < SchemeCount {
				s.ColorScheme = int(v)
			} else {
				s.ColorScheme = 0
			}
		}
	case "sort_field":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil && v < ColumnCount {
			s.SortField = int(v)
		}
	case "visible_columns":
		parsed := 0
		kept := []int{}
		for _, part := range strings.Split(value, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				continue
			}
			parsed++
			if v < ColumnCount {
				kept = append(kept, int(v))
			}
		}
		if parsed > 0 {
			s.VisibleColumns = kept
		}
	}
}

// boolField maps a boolean key to its field.
func (s *Settings) boolField(key string) *bool {
	switch key {
	case "tree_view":
		return &s.TreeView
	case "show_tree_by_default":
		return &s.ShowTreeByDefault
	case "hide_kernel_threads":
		return &s.HideKernelThreads
	case "shadow_other_users":
		return &s.ShadowOtherUsers
	case "highlight_base_name":
		return &s.HighlightBaseName
	case "show_full_path":
		return &s.ShowFullPath
	case "show_merged_command":
		return &s.ShowMergedCommand
	case "highlight_megabytes":
		return &s.HighlightMegabytes
	case "highlight_threads":
		return &s.HighlightThreads
	case "header_margin":
		return &s.HeaderMargin
	case "detailed_cpu_time":
		return &s.DetailedCPUTime
	case "cpu_count_from_zero":
		return &s.CPUCountFromZero
	case "update_process_names":
		return &s.UpdateProcessNames
	case "show_thread_names":
		return &s.ShowThreadNames
	case "enable_mouse":
		return &s.EnableMouse
	case "sort_ascending":
		return &s.SortAscending
	}
	return nil
}
