// Package cronjob keeps the Redis running-timer cache in line with Postgres.
package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

// LongRunningThreshold marks timers that were probably forgotten. They are reported, never stopped.
const LongRunningThreshold = 12 * time.Hour

const reconcileTimeout = 30 * time.Second

// RunningLister is implemented by repository.TimeLogRepository.
type RunningLister interface {
	ListRunning(ctx context.Context) ([]domain.TimeLog, error)
}

// CacheReplacer is implemented by repository.RedisTimerCache.
type CacheReplacer interface {
	Replace(ctx context.Context, running []domain.TimeLog) ([]string, error)
}

type Result struct {
	Running     int
	Removed     []string
	LongRunning []string
}

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	store    RunningLister
	cache    CacheReplacer
	log      logging.Logger
	now      func() time.Time
}

// NewScheduler builds a scheduler for a six-field (with seconds) cron expression.
func NewScheduler(schedule string, store RunningLister, cache CacheReplacer, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		store:    store,
		cache:    cache,
		log:      log.With("component", "reconcile"),
		now:      time.Now,
	}
}

// Start registers the reconcile job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		if _, err := s.Reconcile(ctx); err != nil {
			s.log.Error(ctx, "timer cache reconcile failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	s.log.Info(context.Background(), "cron scheduler started", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop halts the loop. The returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Reconcile reloads every running log into the cache and drops entries with no running row.
func (s *Scheduler) Reconcile(ctx context.Context) (Result, error) {
	running, err := s.store.ListRunning(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list running timers: %w", err)
	}

	removed, err := s.cache.Replace(ctx, running)
	if err != nil {
		return Result{}, err
	}

	res := Result{Running: len(running), Removed: removed}
	now := s.now()
	for _, l := range running {
		if age := now.Sub(l.StartTime); age > LongRunningThreshold {
			res.LongRunning = append(res.LongRunning, l.ID)
			s.log.Warn(ctx, "timer running for a long time",
				"user_id", l.UserID,
				"log_id", l.ID,
				"running_for", age.Round(time.Minute).String(),
			)
		}
	}

	s.log.Info(ctx, "timer cache reconciled", "running", res.Running, "removed", len(res.Removed))
	return res, nil
}
