package service

import (
	"sort"
	"time"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

type ProjectTotal struct {
	Name           string `json:"name"`
	Total          int    `json:"total"`
	FormattedTotal string `json:"formattedTotal"`
}

type TaskTotal struct {
	TaskName       string `json:"taskName"`
	ProjectName    string `json:"projectName"`
	Total          int    `json:"total"`
	FormattedTotal string `json:"formattedTotal"`
}

type DaySummary struct {
	Date           string         `json:"date"`
	DayName        string         `json:"dayName"`
	Total          int            `json:"total"`
	FormattedTotal string         `json:"formattedTotal"`
	Projects       []ProjectTotal `json:"projects"`
}

// ProjectTotals groups by project name. Groups keep the order in which
// their project is first seen in logs; they are not sorted.
func ProjectTotals(logs []domain.TimeLog) []ProjectTotal {
	out := make([]ProjectTotal, 0)
	index := make(map[string]int)

	for _, l := range logs {
		name := l.ProjectName()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ProjectTotal{Name: name})
		}
		out[i].Total += l.Duration
	}

	for i := range out {
		out[i].FormattedTotal = domain.FormatDuration(out[i].Total)
	}
	return out
}

// TaskTotals groups by (task name, project name) and sorts by total,
// largest first. Equal totals keep first-seen order.
func TaskTotals(logs []domain.TimeLog) []TaskTotal {
	type key struct{ task, project string }

	out := make([]TaskTotal, 0)
	index := make(map[key]int)

	for _, l := range logs {
		k := key{task: l.TaskName(), project: l.ProjectName()}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, TaskTotal{TaskName: k.task, ProjectName: k.project})
		}
		out[i].Total += l.Duration
	}

	for i := range out {
		out[i].FormattedTotal = domain.FormatDuration(out[i].Total)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// WeeklyBreakdown buckets logs into the seven calendar days starting at
// weekStart. Days without logs are present with a zero total.
func WeeklyBreakdown(weekStart time.Time, logs []domain.TimeLog, loc *time.Location) []DaySummary {
	start := domain.StartOfDay(weekStart, loc)
	days := make([]DaySummary, 0, 7)

	for i := 0; i < 7; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		dayLogs := make([]domain.TimeLog, 0)
		for _, l := range logs {
			if !l.StartTime.Before(dayStart) && l.StartTime.Before(dayEnd) {
				dayLogs = append(dayLogs, l)
			}
		}

		total := domain.SumDurations(dayLogs)
		days = append(days, DaySummary{
			Date:           dayStart.Format(domain.DateLayout),
			DayName:        dayStart.Weekday().String(),
			Total:          total,
			FormattedTotal: domain.FormatDuration(total),
			Projects:       ProjectTotals(dayLogs),
		})
	}
	return days
}
