package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/logging"
	projectdomain "github.com/worklog-app/worklog-backend/internal/projects/domain"
	"github.com/worklog-app/worklog-backend/internal/tasks/domain"
)

type Store interface {
	Create(ctx context.Context, t *domain.Task) error
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
}

// ProjectLookup resolves a project owned by the user, or ErrProjectNotFound.
type ProjectLookup interface {
	Get(ctx context.Context, userID, id string) (*projectdomain.Project, error)
}

type TaskService struct {
	store    Store
	projects ProjectLookup
	log      logging.Logger
}

func NewTaskService(store Store, projects ProjectLookup, log logging.Logger) *TaskService {
	if log == nil {
		log = logging.Nop{}
	}
	return &TaskService{store: store, projects: projects, log: log.With("component", "tasks")}
}

// Create adds a task to one of the user's projects.
func (s *TaskService) Create(ctx context.Context, userID string, in domain.Input) (*domain.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ref, err := s.project(ctx, userID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{UserID: userID}
	in.Apply(t, ref)
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the user's tasks. A malformed project filter matches nothing.
func (s *TaskService) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	if f.ProjectID != "" && !validID(f.ProjectID) {
		return []domain.Task{}, nil
	}
	return s.store.List(ctx, f)
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}
	return s.store.Get(ctx, userID, id)
}

// Update rewrites a task. The task is checked before the target project.
func (s *TaskService) Update(ctx context.Context, userID, id string, in domain.Input) (*domain.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.project(ctx, userID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	in.Apply(t, ref)
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task and its time logs.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return domain.ErrTaskNotFound
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "task deleted", "user_id", userID, "task_id", id)
	return nil
}

func (s *TaskService) project(ctx context.Context, userID, projectID string) (domain.ProjectRef, error) {
	if !validID(projectID) {
		return domain.ProjectRef{}, projectdomain.ErrProjectNotFound
	}
	p, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return domain.ProjectRef{}, err
	}
	return domain.ProjectRef{ID: p.ID, Name: p.Name}, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
