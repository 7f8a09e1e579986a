package util

import (
	"fmt"
	"math"
)

// MsToSeconds converts milliseconds to whole seconds, rounded to nearest.
// Pause/submit bodies carry seconds while the quiz resource carries
// milliseconds; the backend expects this exact conversion.
func MsToSeconds(ms int64) int64 {
	return int64(math.Round(float64(ms) / 1000.0))
}

// SecondsToMs converts whole seconds back to milliseconds.
func SecondsToMs(s int64) int64 {
	return s * 1000
}

// FormatClock renders a millisecond countdown as m:ss.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
