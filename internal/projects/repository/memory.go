package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/projects/domain"
)

// MemoryRepository keeps projects in process. Used by tests and local runs without Postgres.
type MemoryRepository struct {
	mu       sync.Mutex
	projects map[string]*memProject
	seq      int
	now      func() time.Time
}

type memProject struct {
	domain.Project
	seq int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]*memProject), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.seq++
	r.projects[p.ID] = &memProject{Project: *p, seq: r.seq}
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []*memProject
	for _, p := range r.projects {
		if p.UserID == userID {
			owned = append(owned, p)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq > owned[j].seq })

	out := make([]domain.Project, 0, len(owned))
	for _, p := range owned {
		out = append(out, p.Project)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	cp := p.Project
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.projects[p.ID]
	if !ok || cur.UserID != p.UserID {
		return domain.ErrProjectNotFound
	}
	p.UpdatedAt = r.now()
	cur.Project = *p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}
