package util

import (
	"fmt"
	"time"
)

const (
	kib = 1024.0
	mib = 1024 * kib
	gib = 1024 * mib
	tib = 1024 * gib
)

// FormatBytes renders a byte count in the compact memory column style:
// 512B, 12K, 340M, 1.5G.
func FormatBytes(b uint64) string {
	f := float64(b)
	switch {
	case f >= tib:
		return fmt.Sprintf("%.1fT", f/tib)
	case f >= gib:
		return fmt.Sprintf("%.1fG", f/gib)
	case f >= mib:
		return fmt.Sprintf("%.0fM", f/mib)
	case f >= kib:
		return fmt.Sprintf("%.0fK", f/kib)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// FormatRate renders bytes per second for header meters: "1.5 M/s".
func FormatRate(bps float64) string {
	switch {
	case bps >= gib:
		return fmt.Sprintf("%.1f G/s", bps/gib)
	case bps >= mib:
		return fmt.Sprintf("%.1f M/s", bps/mib)
	case bps >= kib:
		return fmt.Sprintf("%.1f K/s", bps/kib)
	default:
		return fmt.Sprintf("%.0f B/s", max(bps, 0))
	}
}

// FormatIORate renders a disk rate for table cells: "0B/s", "23.0K/s".
func FormatIORate(bps float64) string {
	switch {
	case bps <= 0:
		return "0B/s"
	case bps < kib:
		return fmt.Sprintf("%dB/s", uint64(bps))
	case bps < mib:
		return fmt.Sprintf("%.1fK/s", bps/kib)
	case bps < gib:
		return fmt.Sprintf("%.1fM/s", bps/mib)
	default:
		return fmt.Sprintf("%.1fG/s", bps/gib)
	}
}

// FormatBandwidth renders network throughput: "0 B/s", "1.2 MB/s".
func FormatBandwidth(bps float64) string {
	switch {
	case bps >= gib:
		return fmt.Sprintf("%.1f GB/s", bps/gib)
	case bps >= mib:
		return fmt.Sprintf("%.1f MB/s", bps/mib)
	case bps >= kib:
		return fmt.Sprintf("%.1f KB/s", bps/kib)
	case bps >= 1:
		return fmt.Sprintf("%.0f B/s", bps)
	default:
		return "0 B/s"
	}
}

// FormatTime renders a TIME+ cell: M:SS.cc below an hour, H:MM:SS above.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	centis := int64(d/(10*time.Millisecond)) % 100
	return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, centis)
}

// FormatUptime renders uptime as HH:MM:SS, prefixed with a day count once
// it exceeds a day.
func FormatUptime(d time.Duration) string {
	total := int64(max(d, 0) / time.Second)
	days := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	s := total % 60
	if days > 0 {
		return fmt.Sprintf("%d %s, %02d:%02d:%02d", days, Pluralize(int(days), "day", "days"), h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
