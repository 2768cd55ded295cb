package domain

import (
	"fmt"
	"math"
	"time"
)

// ComputeDurationMinutes returns the elapsed time between start and end in
// whole minutes, rounded to the nearest minute. Negative spans yield 0.
func ComputeDurationMinutes(start, end time.Time) int {
	ms := float64(end.Sub(start).Milliseconds())
	m := int(math.Round(ms / 60000))
	if m < 0 {
		return 0
	}
	return m
}

// FormatDuration renders minutes as "H:MM". Zero and negative values render as "0:00".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// SumDurations adds up the minutes of every log.
func SumDurations(logs []TimeLog) int {
	total := 0
	for _, l := range logs {
		total += l.Duration
	}
	return total
}
