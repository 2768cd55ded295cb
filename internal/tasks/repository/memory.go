package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
)

// MemoryRepository keeps tasks in process for tests.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[string]*memTask
	seq   int
	now   func() time.Time
}

type memTask struct {
	domain.Task
	seq int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]*memTask), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.seq++
	r.tasks[t.ID] = &memTask{Task: *t, seq: r.seq}
	return nil
}

func (r *MemoryRepository) List(_ context.Context, f domain.Filter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var hits []*memTask
	for _, t := range r.tasks {
		if t.UserID != f.UserID {
			continue
		}
		if f.ProjectID != "" && t.Project.ID != f.ProjectID {
			continue
		}
		hits = append(hits, t)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq > hits[j].seq })

	out := make([]domain.Task, 0, len(hits))
	for _, t := range hits {
		out = append(out, t.Task)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	cp := t.Task
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrTaskNotFound
	}
	t.UpdatedAt = r.now()
	cur.Task = *t
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) CountByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tasks {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}
