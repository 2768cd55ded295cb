package service

import (
	"context"
	"fmt"
	"time"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

const recentEntriesLimit = 10

type LogFinder interface {
	Find(ctx context.Context, f domain.Filter) ([]domain.TimeLog, error)
}

type TaskCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type Summary struct {
	TodayTotal    int              `json:"todayTotal"`
	WeekTotal     int              `json:"weekTotal"`
	TotalTasks    int              `json:"totalTasks"`
	RecentEntries []domain.TimeLog `json:"recentEntries"`
}

// DashboardService aggregates a user's finished time logs.
type DashboardService struct {
	logs  LogFinder
	tasks TaskCounter
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(logs LogFinder, tasks TaskCounter, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{logs: logs, tasks: tasks, loc: loc, now: time.Now}
}

// Summary reports today's and this week's totals, the task count and the
// ten most recent finished logs. Today has no upper bound.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*Summary, error) {
	now := s.now()
	today := domain.StartOfDay(now, s.loc)
	weekStart := domain.StartOfWeek(now, s.loc)
	weekEnd := domain.EndOfWeek(now, s.loc)

	from := weekStart
	if today.Before(from) {
		from = today
	}
	logs, err := s.logs.Find(ctx, domain.Filter{UserID: userID, From: &from, ExcludeRunning: true})
	if err != nil {
		return nil, fmt.Errorf("load summary logs: %w", err)
	}

	var out Summary
	for _, l := range logs {
		if !l.StartTime.Before(today) {
			out.TodayTotal += l.Duration
		}
		if !l.StartTime.Before(weekStart) && !l.StartTime.After(weekEnd) {
			out.WeekTotal += l.Duration
		}
	}

	out.TotalTasks, err = s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	out.RecentEntries, err = s.logs.Find(ctx, domain.Filter{UserID: userID, ExcludeRunning: true, Limit: recentEntriesLimit})
	if err != nil {
		return nil, fmt.Errorf("load recent logs: %w", err)
	}
	return &out, nil
}

// ProjectTotals aggregates finished logs per project. from and to are
// applied only when both are set.
func (s *DashboardService) ProjectTotals(ctx context.Context, userID string, from, to *time.Time) ([]ProjectTotal, error) {
	logs, err := s.finished(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return ProjectTotals(logs), nil
}

func (s *DashboardService) TaskTotals(ctx context.Context, userID string, from, to *time.Time) ([]TaskTotal, error) {
	logs, err := s.finished(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return TaskTotals(logs), nil
}

// Weekly returns the seven-day breakdown of the week containing weekStart,
// or of the current week when weekStart is nil.
func (s *DashboardService) Weekly(ctx context.Context, userID string, weekStart *time.Time) ([]DaySummary, error) {
	ref := s.now()
	if weekStart != nil {
		ref = *weekStart
	}
	start := domain.StartOfWeek(ref, s.loc)
	end := domain.EndOfWeek(ref, s.loc)

	logs, err := s.finished(ctx, userID, &start, &end)
	if err != nil {
		return nil, err
	}
	return WeeklyBreakdown(start, logs, s.loc), nil
}

func (s *DashboardService) finished(ctx context.Context, userID string, from, to *time.Time) ([]domain.TimeLog, error) {
	f := domain.Filter{UserID: userID, ExcludeRunning: true}
	if from != nil && to != nil {
		f.From, f.To = from, to
	}
	logs, err := s.logs.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	return logs, nil
}
