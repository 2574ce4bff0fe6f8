package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/pstop/internal/errors"
)

// Validate checks runtime options for values pstop cannot honor.
func Validate(o Options) error {
	if o.Interval != 0 {
		minInterval := MinIntervalMS * time.Millisecond
		maxInterval := MaxIntervalMS * time.Millisecond
		if o.Interval < minInterval || o.Interval > maxInterval {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Refresh interval %s is out of range", o.Interval),
				fmt.Sprintf("Pick an interval between %s and %s, like 1s or 1500ms.", minInterval, maxInterval))
		}
	}

	if o.Cadence < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Cadence must be at least 1 (got %d)", o.Cadence),
			"Use --cadence 1 to refresh every attribute on every tick.")
	}

	if o.GPUCadence < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("GPU cadence must be at least 1 (got %d)", o.GPUCadence),
			"Use --gpu-cadence 1 to read GPU counters on every tick.")
	}

	return nil
}

// ValidateSettings reports settings that were clamped or dropped on load.
// The returned strings are human-readable warnings; nil means clean.
func ValidateSettings(s Settings) []string {
	var warnings []string
	if s.UpdateIntervalMS != clampInterval(s.UpdateIntervalMS) {
		warnings = append(warnings, fmt.Sprintf("update_interval_ms=%d is outside [%d, %d]", s.UpdateIntervalMS, MinIntervalMS, MaxIntervalMS))
	}
	if s.ColorScheme < 0 || s.ColorScheme >= SchemeCount {
		warnings = append(warnings, fmt.Sprintf("color_scheme=%d is not a known scheme", s.ColorScheme))
	}
	if s.SortField < 0 || s.SortField >= ColumnCount {
		warnings = append(warnings, fmt.Sprintf("sort_field=%d is not a column", s.SortField))
	}
	if len(s.VisibleColumns) == 0 {
		warnings = append(warnings, "visible_columns is empty")
	}
	return warnings
}
