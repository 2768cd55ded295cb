package http

import (
	"context"

	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/projects/domain"
)

// ProjectService is implemented by service.ProjectService.
type ProjectService interface {
	Create(ctx context.Context, userID string, in domain.Input) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.Project, error)
	Get(ctx context.Context, userID, id string) (*domain.Project, error)
	Update(ctx context.Context, userID, id string, in domain.Input) (*domain.Project, error)
	Delete(ctx context.Context, userID, id string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc ProjectService
	log logging.Logger
}

func New(svc ProjectService, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{svc: svc, log: log.With("component", "projects_http")}
}

type projectReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (r projectReq) toInput() domain.Input {
	return domain.Input{Name: r.Name, Description: r.Description}
}
