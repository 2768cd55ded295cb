package domain

import (
	"time"

	"github.com/worklog-app/worklog-backend/internal/common"
)

// ManualEntry carries the client-editable fields of a time log.
type ManualEntry struct {
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int
	Description string
}

func (e ManualEntry) Validate() error {
	var v common.ValidationError
	if e.StartTime.IsZero() {
		v.Add("startTime", "Start time is required")
	}
	if e.EndTime != nil && !e.StartTime.IsZero() && e.EndTime.Before(e.StartTime) {
		v.Add("endTime", "End time must not be before start time")
	}
	if e.Duration != nil && *e.Duration < 0 {
		v.Add("duration", "Duration must not be negative")
	}
	return v.OrNil()
}

// ResolveDuration applies the manual duration rule: when both timestamps are
// present the duration is recomputed from them and any client value is
// discarded; otherwise the client value (or 0) is kept.
func (e ManualEntry) ResolveDuration() int {
	if e.EndTime != nil && !e.StartTime.IsZero() {
		return ComputeDurationMinutes(e.StartTime, *e.EndTime)
	}
	if e.Duration != nil && *e.Duration > 0 {
		return *e.Duration
	}
	return 0
}

// Apply overwrites l with the entry. A blank description keeps the existing one.
// The result is never running.
func (e ManualEntry) Apply(l *TimeLog) {
	l.StartTime = e.StartTime
	l.EndTime = e.EndTime
	l.Duration = e.ResolveDuration()
	if e.Description != "" {
		l.Description = e.Description
	}
	l.IsRunning = false
}
