package textutil

import (
	"fmt"
	"strconv"
)

// FormatSize renders a byte count in human-readable form ("15.5 MB").
func FormatSize(size int64) string {
	switch {
	case size < 0:
		return "unknown"
	case size < 1<<10:
		return fmt.Sprintf("%d B", size)
	case size < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	case size < 1<<30:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1<<30))
	}
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS past the hour mark.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "unknown"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatCount renders a large count compactly ("1.2M", "3.4K").
func FormatCount(count int64) string {
	switch {
	case count <= 0:
		return "unknown"
	case count >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(count)/1_000_000_000)
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return strconv.FormatInt(count, 10)
	}
}

// FormatBitrate renders bits-per-second as kbps or Mbps.
func FormatBitrate(bps int64) string {
	if bps <= 0 {
		return "unknown"
	}
	kbps := float64(bps) / 1000
	if kbps >= 1000 {
		return fmt.Sprintf("%.1f Mbps", kbps/1000)
	}
	return fmt.Sprintf("%.0f kbps", kbps)
}
