package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

// Store is the persistence contract of the timer. Insert must reject a
// second running log for a user atomically.
type Store interface {
	TaskRef(ctx context.Context, userID, taskID string) (*domain.TaskRef, error)
	Insert(ctx context.Context, l *domain.TimeLog) error
	Running(ctx context.Context, userID string) (*domain.TimeLog, error)
	StopRunning(ctx context.Context, userID string, at time.Time) (*domain.TimeLog, error)
	Get(ctx context.Context, userID, id string) (*domain.TimeLog, error)
	Update(ctx context.Context, l *domain.TimeLog) error
	Delete(ctx context.Context, userID, id string) error
	Find(ctx context.Context, f domain.Filter) ([]domain.TimeLog, error)
	ListRunning(ctx context.Context) ([]domain.TimeLog, error)
}

// TimerCache holds running timers outside the store and broadcasts changes.
type TimerCache interface {
	GetRunning(ctx context.Context, userID string) (*domain.TimeLog, bool, error)
	SetRunning(ctx context.Context, l *domain.TimeLog) error
	ClearRunning(ctx context.Context, userID string) error
	Publish(ctx context.Context, ev domain.Event) error
}

type CreateInput struct {
	TaskID string
	domain.ManualEntry
}

// TimerService runs the per-user timer state machine and manual entries.
type TimerService struct {
	store Store
	cache TimerCache
	log   logging.Logger
	now   func() time.Time
}

// NewTimerService builds the service. cache may be nil when Redis is disabled.
func NewTimerService(store Store, cache TimerCache, log logging.Logger) *TimerService {
	if cache == nil {
		cache = nopCache{}
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &TimerService{
		store: store,
		cache: cache,
		log:   log.With("component", "timer"),
		now:   time.Now,
	}
}

// Start opens a running log for the task. It never stops an existing timer.
func (s *TimerService) Start(ctx context.Context, userID, taskID string) (*domain.TimeLog, error) {
	ref, err := s.taskRef(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	running, err := s.store.Running(ctx, userID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		return nil, domain.ErrTimerAlreadyRunning
	}

	l := &domain.TimeLog{
		UserID:    userID,
		TaskID:    ref.ID,
		StartTime: s.now(),
		IsRunning: true,
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	l.Task = ref

	s.log.Info(ctx, "timer started", "user_id", userID, "task_id", ref.ID, "log_id", l.ID)
	s.cacheRunning(ctx, l)
	s.publish(ctx, domain.EventStarted, l)
	return l, nil
}

func (s *TimerService) Stop(ctx context.Context, userID string) (*domain.TimeLog, error) {
	l, err := s.store.StopRunning(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "timer stopped", "user_id", userID, "log_id", l.ID, "duration", l.Duration)
	s.clearRunning(ctx, userID)
	s.publish(ctx, domain.EventStopped, l)
	return l, nil
}

// Current returns the running log, or nil when the timer is idle. A cache
// hit only names the log; the row and its task names always come from the
// store, and an entry whose row is gone or stopped is dropped. Current never
// fills the cache, only Start does.
func (s *TimerService) Current(ctx context.Context, userID string) (*domain.TimeLog, error) {
	if cached, ok, err := s.cache.GetRunning(ctx, userID); err != nil {
		s.log.Warn(ctx, "timer cache read failed", "user_id", userID, "error", err)
	} else if ok {
		l, err := s.store.Get(ctx, userID, cached.ID)
		switch {
		case err == nil && l.IsRunning:
			return l, nil
		case err == nil || errors.Is(err, domain.ErrTimeLogNotFound):
			s.log.Info(ctx, "dropping stale cached timer", "user_id", userID, "log_id", cached.ID)
			s.clearRunning(ctx, userID)
		default:
			return nil, err
		}
	}

	return s.store.Running(ctx, userID)
}

func (s *TimerService) List(ctx context.Context, f domain.Filter) ([]domain.TimeLog, error) {
	if f.TaskID != "" && !validID(f.TaskID) {
		return []domain.TimeLog{}, nil
	}
	if f.ProjectID != "" && !validID(f.ProjectID) {
		return []domain.TimeLog{}, nil
	}
	return s.store.Find(ctx, f)
}

// Create records a finished manual entry.
func (s *TimerService) Create(ctx context.Context, userID string, in CreateInput) (*domain.TimeLog, error) {
	if strings.TrimSpace(in.TaskID) == "" {
		return nil, common.Invalid("taskId", "Task ID is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ref, err := s.taskRef(ctx, userID, in.TaskID)
	if err != nil {
		return nil, err
	}

	l := &domain.TimeLog{UserID: userID, TaskID: ref.ID}
	in.Apply(l)
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	l.Task = ref

	s.publish(ctx, domain.EventCreated, l)
	return l, nil
}

// Update rewrites a log from a manual entry. The result is never running.
func (s *TimerService) Update(ctx context.Context, userID, id string, in domain.ManualEntry) (*domain.TimeLog, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrTimeLogNotFound
	}

	l, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	wasRunning := l.IsRunning

	in.Apply(l)
	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}

	if wasRunning {
		s.clearRunning(ctx, userID)
	}
	s.publish(ctx, domain.EventUpdated, l)
	return l, nil
}

func (s *TimerService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return domain.ErrTimeLogNotFound
	}

	l, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}

	if l.IsRunning {
		s.clearRunning(ctx, userID)
	}
	s.publish(ctx, domain.EventDeleted, l)
	return nil
}

func (s *TimerService) taskRef(ctx context.Context, userID, taskID string) (*domain.TaskRef, error) {
	if !validID(taskID) {
		return nil, domain.ErrTaskNotFound
	}
	ref, err := s.store.TaskRef(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup task: %w", err)
	}
	return ref, nil
}

// Cache and event failures are logged, never returned.

func (s *TimerService) cacheRunning(ctx context.Context, l *domain.TimeLog) {
	if err := s.cache.SetRunning(ctx, l); err != nil {
		s.log.Warn(ctx, "timer cache write failed", "user_id", l.UserID, "error", err)
	}
}

func (s *TimerService) clearRunning(ctx context.Context, userID string) {
	if err := s.cache.ClearRunning(ctx, userID); err != nil {
		s.log.Warn(ctx, "timer cache clear failed", "user_id", userID, "error", err)
	}
}

func (s *TimerService) publish(ctx context.Context, typ string, l *domain.TimeLog) {
	ev := domain.Event{Type: typ, UserID: l.UserID, LogID: l.ID, TimeLog: l, At: s.now()}
	if typ == domain.EventDeleted {
		ev.TimeLog = nil
	}
	if err := s.cache.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "timer event publish failed", "user_id", l.UserID, "event", typ, "error", err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type nopCache struct{}

func (nopCache) GetRunning(context.Context, string) (*domain.TimeLog, bool, error) {
	return nil, false, nil
}
func (nopCache) SetRunning(context.Context, *domain.TimeLog) error { return nil }
func (nopCache) ClearRunning(context.Context, string) error        { return nil }
func (nopCache) Publish(context.Context, domain.Event) error       { return nil }
