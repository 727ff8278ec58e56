package services

import (
	"fmt"
	"time"
)

// FormatHoursMinutes renders seconds as zero-padded HH:MM. Hours are not
// capped at 24 and negative input renders as 00:00.
func FormatHoursMinutes(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// FormatElapsedClock renders d as HH:MM:SS, truncating to whole seconds.
func FormatElapsedClock(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
