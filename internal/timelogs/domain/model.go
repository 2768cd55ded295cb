package domain

import (
	"encoding/json"
	"time"
)

// ProjectRef is the project summary embedded in a time log's task.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRef is the task summary embedded in a time log.
type TaskRef struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Project ProjectRef `json:"project"`
}

// TimeLog is one tracked interval of work on a task.
//
// While IsRunning is true EndTime is nil and Duration is 0. Once stopped,
// Duration is derived from the timestamps by ComputeDurationMinutes.
type TimeLog struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	TaskID      string     `json:"taskId"`
	Task        *TaskRef   `json:"task,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	IsRunning   bool       `json:"isRunning"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (l TimeLog) FormattedDuration() string {
	return FormatDuration(l.Duration)
}

// ProjectName returns the name of the log's project, or "" when the task is not loaded.
func (l TimeLog) ProjectName() string {
	if l.Task == nil {
		return ""
	}
	return l.Task.Project.Name
}

func (l TimeLog) TaskName() string {
	if l.Task == nil {
		return ""
	}
	return l.Task.Name
}

// Stop finalizes a running log at the given instant.
func (l *TimeLog) Stop(at time.Time) {
	end := at
	l.EndTime = &end
	l.IsRunning = false
	l.Duration = ComputeDurationMinutes(l.StartTime, end)
	l.UpdatedAt = at
}

func (l TimeLog) MarshalJSON() ([]byte, error) {
	type alias TimeLog
	return json.Marshal(struct {
		alias
		FormattedDuration string `json:"formattedDuration"`
	}{
		alias:             alias(l),
		FormattedDuration: l.FormattedDuration(),
	})
}

// Filter selects time logs of a single user. Zero values mean "no constraint".
// From and To bound StartTime inclusively.
type Filter struct {
	UserID         string
	TaskID         string
	ProjectID      string
	From           *time.Time
	To             *time.Time
	ExcludeRunning bool
	Limit          int
}

// Matches reports whether l satisfies every constraint of f.
func (f Filter) Matches(l TimeLog) bool {
	if l.UserID != f.UserID {
		return false
	}
	if f.TaskID != "" && l.TaskID != f.TaskID {
		return false
	}
	if f.ProjectID != "" && (l.Task == nil || l.Task.Project.ID != f.ProjectID) {
		return false
	}
	if f.From != nil && l.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && l.StartTime.After(*f.To) {
		return false
	}
	if f.ExcludeRunning && l.IsRunning {
		return false
	}
	return true
}

const (
	EventInitial = "initial"
	EventStarted = "started"
	EventStopped = "stopped"
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event is a timer change pushed to a user's stream subscribers.
type Event struct {
	Type    string    `json:"type"`
	UserID  string    `json:"userId"`
	LogID   string    `json:"logId,omitempty"`
	TimeLog *TimeLog  `json:"timeLog"`
	At      time.Time `json:"at"`
}
