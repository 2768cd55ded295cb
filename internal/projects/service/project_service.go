package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/projects/domain"
)

// Store is implemented by repository.ProjectRepository.
type Store interface {
	Create(ctx context.Context, p *domain.Project) error
	List(ctx context.Context, userID string) ([]domain.Project, error)
	Get(ctx context.Context, userID, id string) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, userID, id string) error
}

// ProjectService handles project-related business logic
type ProjectService struct {
	store Store
	log   logging.Logger
}

// NewProjectService creates a new project service
func NewProjectService(store Store, log logging.Logger) *ProjectService {
	if log == nil {
		log = logging.Nop{}
	}
	return &ProjectService{store: store, log: log.With("component", "projects")}
}

func (s *ProjectService) Create(ctx context.Context, userID string, in domain.Input) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := &domain.Project{UserID: userID}
	in.Apply(p)
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects for a user, newest first
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.store.List(ctx, userID)
}

// Get loads one project. Malformed ids and other users' projects are both not found.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProjectNotFound
	}
	return s.store.Get(ctx, userID, id)
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, in domain.Input) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	in.Apply(p)
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project together with its tasks and time logs
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrProjectNotFound
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "project deleted", "user_id", userID, "project_id", id)
	return nil
}
