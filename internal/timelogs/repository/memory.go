package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
)

type ownedTask struct {
	userID string
	ref    domain.TaskRef
}

// MemoryRepository is an in-process store with the same contract as
// TimeLogRepository, including the single running timer per user.
type MemoryRepository struct {
	mu    sync.RWMutex
	logs  map[string]domain.TimeLog
	tasks map[string]ownedTask
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		logs:  make(map[string]domain.TimeLog),
		tasks: make(map[string]ownedTask),
		now:   time.Now,
	}
}

// AddTask registers a task owned by userID.
func (m *MemoryRepository) AddTask(userID string, ref domain.TaskRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[ref.ID] = ownedTask{userID: userID, ref: ref}
}

// RemoveTask deletes a task together with its logs.
func (m *MemoryRepository) RemoveTask(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	for id, l := range m.logs {
		if l.TaskID == taskID {
			delete(m.logs, id)
		}
	}
}

func (m *MemoryRepository) TaskRef(_ context.Context, userID, taskID string) (*domain.TaskRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[taskID]
	if !ok || t.userID != userID {
		return nil, domain.ErrTaskNotFound
	}
	ref := t.ref
	return &ref, nil
}

// CountByUser returns how many tasks userID owns.
func (m *MemoryRepository) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, t := range m.tasks {
		if t.userID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) Insert(_ context.Context, l *domain.TimeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tasks[l.TaskID]; !ok || t.userID != l.UserID {
		return domain.ErrTaskNotFound
	}
	if l.IsRunning && m.runningLocked(l.UserID) != nil {
		return domain.ErrTimerAlreadyRunning
	}

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := m.now()
	l.CreatedAt, l.UpdatedAt = now, now
	m.logs[l.ID] = *l
	return nil
}

func (m *MemoryRepository) Running(_ context.Context, userID string) (*domain.TimeLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := m.runningLocked(userID)
	if l == nil {
		return nil, nil
	}
	return m.populate(*l), nil
}

func (m *MemoryRepository) StopRunning(_ context.Context, userID string, at time.Time) (*domain.TimeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.runningLocked(userID)
	if l == nil {
		return nil, domain.ErrNoRunningTimer
	}
	l.Stop(at)
	m.logs[l.ID] = *l
	return m.populate(*l), nil
}

func (m *MemoryRepository) Get(_ context.Context, userID, id string) (*domain.TimeLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.logs[id]
	if !ok || l.UserID != userID {
		return nil, domain.ErrTimeLogNotFound
	}
	return m.populate(l), nil
}

func (m *MemoryRepository) Update(_ context.Context, l *domain.TimeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.logs[l.ID]
	if !ok || existing.UserID != l.UserID {
		return domain.ErrTimeLogNotFound
	}
	if l.IsRunning {
		if r := m.runningLocked(l.UserID); r != nil && r.ID != l.ID {
			return domain.ErrTimerAlreadyRunning
		}
	}
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = m.now()
	m.logs[l.ID] = *l
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.logs[id]
	if !ok || l.UserID != userID {
		return domain.ErrTimeLogNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *MemoryRepository) Find(_ context.Context, f domain.Filter) ([]domain.TimeLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.TimeLog, 0)
	for _, l := range m.logs {
		p := m.populate(l)
		if f.Matches(*p) {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) ListRunning(_ context.Context) ([]domain.TimeLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.TimeLog
	for _, l := range m.logs {
		if l.IsRunning {
			out = append(out, *m.populate(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *MemoryRepository) runningLocked(userID string) *domain.TimeLog {
	for _, l := range m.logs {
		if l.UserID == userID && l.IsRunning {
			cp := l
			return &cp
		}
	}
	return nil
}

func (m *MemoryRepository) populate(l domain.TimeLog) *domain.TimeLog {
	if t, ok := m.tasks[l.TaskID]; ok {
		ref := t.ref
		l.Task = &ref
	}
	return &l
}

// sortNewestFirst orders by start time descending with id as a tiebreaker.
func sortNewestFirst(logs []domain.TimeLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].StartTime.Equal(logs[j].StartTime) {
			return logs[i].ID > logs[j].ID
		}
		return logs[i].StartTime.After(logs[j].StartTime)
	})
}
